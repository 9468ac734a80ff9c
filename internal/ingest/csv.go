// Package ingest loads pre-cleaned transaction CSV files into the store.
// Merchant grouping and duplicate detection happen upstream; this loader
// only parses and validates.
package ingest

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sagebudget/sage/internal/model"
)

// csvDate parses the date column as a plain calendar date.
type csvDate struct {
	time.Time
}

// UnmarshalCSV implements gocsv unmarshaling for date columns.
func (d *csvDate) UnmarshalCSV(value string) error {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	d.Time = t
	return nil
}

// csvRow maps one CSV line. The id column is optional; absent IDs are
// derived from the row contents so re-imports stay idempotent.
type csvRow struct {
	ID              string  `csv:"id"`
	Date            csvDate `csv:"date"`
	MerchantGroupID string  `csv:"merchant_group_id"`
	MerchantName    string  `csv:"merchant_name"`
	Type            string  `csv:"type"`
	Amount          float64 `csv:"amount"`
}

// ReadTransactions parses a transaction CSV stream. Every row must validate;
// a malformed row aborts the import with its line number so the file can be
// fixed rather than half-loaded.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	txns := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		txn := model.Transaction{
			ID:              row.ID,
			Date:            row.Date.Time,
			MerchantGroupID: row.MerchantGroupID,
			MerchantName:    row.MerchantName,
			Amount:          row.Amount,
			Type:            model.TransactionType(row.Type),
		}
		if txn.ID == "" {
			txn.ID = deriveID(txn)
		}
		if err := txn.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err) // +2 for header and 1-basing
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// deriveID builds a stable hash from the row contents.
func deriveID(t model.Transaction) string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantGroupID,
		t.Type)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:12])
}
