package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebudget/sage/internal/model"
)

func TestReadTransactions(t *testing.T) {
	input := strings.Join([]string{
		"id,date,merchant_group_id,merchant_name,type,amount",
		"txn-1,2024-01-15,grp-acme,Acme Streaming,expense,9.99",
		",2024-02-15,grp-acme,Acme Streaming,expense,9.99",
		"txn-3,2024-02-28,grp-payroll,Initech Payroll,income,2800.00",
	}, "\n")

	txns, err := ReadTransactions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "txn-1", txns[0].ID)
	assert.Equal(t, "grp-acme", txns[0].MerchantGroupID)
	assert.Equal(t, model.TypeExpense, txns[0].Type)
	assert.InDelta(t, 9.99, txns[0].Amount, 1e-9)
	assert.Equal(t, 2024, txns[0].Date.Year())

	assert.NotEmpty(t, txns[1].ID, "missing IDs are derived from row contents")
	assert.Equal(t, model.TypeIncome, txns[2].Type)
}

func TestReadTransactionsDerivedIDStable(t *testing.T) {
	input := "id,date,merchant_group_id,merchant_name,type,amount\n" +
		",2024-03-01,grp-1,Acme,expense,10.00\n"

	first, err := ReadTransactions(strings.NewReader(input))
	require.NoError(t, err)
	second, err := ReadTransactions(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestReadTransactionsRejectsBadRows(t *testing.T) {
	badDate := "id,date,merchant_group_id,merchant_name,type,amount\n" +
		"txn-1,15/01/2024,grp-1,Acme,expense,9.99\n"
	_, err := ReadTransactions(strings.NewReader(badDate))
	assert.ErrorContains(t, err, "invalid date")

	badType := "id,date,merchant_group_id,merchant_name,type,amount\n" +
		"txn-1,2024-01-15,grp-1,Acme,chargeback,9.99\n"
	_, err = ReadTransactions(strings.NewReader(badType))
	assert.ErrorContains(t, err, "row 2")
	assert.ErrorContains(t, err, "invalid type")

	missingGroup := "id,date,merchant_group_id,merchant_name,type,amount\n" +
		"txn-1,2024-01-15,,Acme,expense,9.99\n"
	_, err = ReadTransactions(strings.NewReader(missingGroup))
	assert.ErrorContains(t, err, "missing merchant group ID")
}
