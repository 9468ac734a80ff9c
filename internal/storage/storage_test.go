package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebudget/sage/internal/common"
	"github.com/sagebudget/sage/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTxns(groupID string, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	for i := 0; i < count; i++ {
		txns[i] = model.Transaction{
			ID:              fmt.Sprintf("%s-txn-%d", groupID, i),
			MerchantGroupID: groupID,
			MerchantName:    "Acme Streaming",
			Date:            time.Date(2024, time.Month(i+1), 15, 0, 0, 0, 0, time.UTC),
			Amount:          9.99,
			Type:            model.TypeExpense,
		}
	}
	return txns
}

func testPattern(id, groupID string) model.RecurringPattern {
	dayOfMonth := 15
	return model.RecurringPattern{
		ID:                 id,
		MerchantGroupID:    groupID,
		MerchantName:       "Acme Streaming",
		Frequency:          model.FrequencyMonthly,
		Interval:           1,
		DayOfMonth:         &dayOfMonth,
		Type:               model.TypeExpense,
		ExpectedAmount:     9.99,
		AmountVariance:     0.01,
		ConfidenceScore:    0.82,
		DetectionMethod:    "exact-amount",
		OccurrenceCount:    6,
		LastOccurrenceDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		NextExpectedDate:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		IsActive:           true,
		ReminderEnabled:    true,
		ReminderDaysBefore: 2,
	}
}

func TestSaveAndGetTransactions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	txns := testTxns("grp-1", 4)
	require.NoError(t, s.SaveTransactions(ctx, txns))

	// Saving again is a no-op, not an error.
	require.NoError(t, s.SaveTransactions(ctx, txns))

	got, err := s.GetTransactionsByMerchantGroup(ctx, "grp-1")
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, txn := range got {
		assert.Equal(t, txns[i].ID, txn.ID)
		assert.Equal(t, model.TypeExpense, txn.Type)
		assert.InDelta(t, 9.99, txn.Amount, 1e-9)
		assert.True(t, txns[i].Date.Equal(txn.Date), "date mismatch at index %d", i)
	}
}

func TestListMerchantGroups(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTransactions(ctx, testTxns("grp-b", 3)))
	require.NoError(t, s.SaveTransactions(ctx, testTxns("grp-a", 3)))

	groups, err := s.ListMerchantGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"grp-a", "grp-b"}, groups)
}

func TestUpsertPatternsRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p := testPattern("pat-1", "grp-1")
	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{p}))

	got, err := s.GetPattern(ctx, "pat-1")
	require.NoError(t, err)

	assert.Equal(t, p.MerchantGroupID, got.MerchantGroupID)
	assert.Equal(t, model.FrequencyMonthly, got.Frequency)
	assert.Equal(t, 1, got.Interval)
	require.NotNil(t, got.DayOfMonth)
	assert.Equal(t, 15, *got.DayOfMonth)
	assert.Nil(t, got.DayOfWeek)
	assert.InDelta(t, 9.99, got.ExpectedAmount, 1e-9)
	assert.Equal(t, "exact-amount", got.DetectionMethod)
	assert.Equal(t, 6, got.OccurrenceCount)
	assert.True(t, got.IsActive)
	assert.True(t, p.LastOccurrenceDate.Equal(got.LastOccurrenceDate))
	assert.True(t, p.NextExpectedDate.Equal(got.NextExpectedDate))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpsertPatternsUpdatesComputedFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p := testPattern("pat-1", "grp-1")
	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{p}))

	first, err := s.GetPattern(ctx, "pat-1")
	require.NoError(t, err)

	p.OccurrenceCount = 7
	p.ConfidenceScore = 0.9
	p.LastOccurrenceDate = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{p}))

	got, err := s.GetPattern(ctx, "pat-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.OccurrenceCount)
	assert.InDelta(t, 0.9, got.ConfidenceScore, 1e-9)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "created_at survives upsert")
}

func TestUpsertPatternsRejectsWrongGroup(t *testing.T) {
	s := newTestStorage(t)
	p := testPattern("pat-1", "grp-2")
	err := s.UpsertPatterns(context.Background(), "grp-1", []model.RecurringPattern{p})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestUserOwnedFieldUpdates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p := testPattern("pat-1", "grp-1")
	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{p}))

	require.NoError(t, s.SetPatternConfirmed(ctx, "pat-1", true))
	require.NoError(t, s.SetPatternNotes(ctx, "pat-1", "shared with roommate"))
	require.NoError(t, s.SetPatternReminder(ctx, "pat-1", false, 5))

	got, err := s.GetPattern(ctx, "pat-1")
	require.NoError(t, err)
	assert.True(t, got.IsConfirmed)
	assert.Equal(t, "shared with roommate", got.Notes)
	assert.False(t, got.ReminderEnabled)
	assert.Equal(t, 5, got.ReminderDaysBefore)
}

func TestSetPatternReminderRejectsNegativeLead(t *testing.T) {
	s := newTestStorage(t)
	err := s.SetPatternReminder(context.Background(), "pat-1", true, -1)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestPatternNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetPattern(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, s.SetPatternConfirmed(ctx, "missing", true), common.ErrNotFound)
	assert.ErrorIs(t, s.DeletePattern(ctx, "missing"), common.ErrNotFound)
}

func TestDeletePattern(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p := testPattern("pat-1", "grp-1")
	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{p}))
	require.NoError(t, s.DeletePattern(ctx, "pat-1"))

	_, err := s.GetPattern(ctx, "pat-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetPatternsByMerchantGroup(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	basic := testPattern("pat-basic", "grp-1")
	premium := testPattern("pat-premium", "grp-1")
	premium.ExpectedAmount = 14.99
	other := testPattern("pat-other", "grp-2")

	require.NoError(t, s.UpsertPatterns(ctx, "grp-1", []model.RecurringPattern{basic, premium}))
	require.NoError(t, s.UpsertPatterns(ctx, "grp-2", []model.RecurringPattern{other}))

	got, err := s.GetPatternsByMerchantGroup(ctx, "grp-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pat-basic", got[0].ID)
	assert.Equal(t, "pat-premium", got[1].ID)

	all, err := s.ListPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveTransactionsValidation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SaveTransactions(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, s.SaveTransactions(ctx, []model.Transaction{}), ErrEmptySlice)

	bad := testTxns("grp-1", 1)
	bad[0].Type = "refund"
	assert.ErrorIs(t, s.SaveTransactions(ctx, bad), ErrInvalidTransaction)
}
