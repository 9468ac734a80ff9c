package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagebudget/sage/internal/common"
	"github.com/sagebudget/sage/internal/model"
)

const patternColumns = `
	id, merchant_group_id, merchant_name, frequency, interval,
	day_of_month, day_of_week, week_of_month,
	expected_amount, amount_variance, is_amount_variable,
	transaction_type, confidence_score, detection_method,
	last_occurrence_date, next_expected_date, occurrence_count,
	is_active, is_confirmed, notes, reminder_enabled, reminder_days_before,
	created_at, updated_at
`

// scanPattern reads one recurring pattern row.
func scanPattern(row interface{ Scan(dest ...any) error }) (model.RecurringPattern, error) {
	var p model.RecurringPattern
	var frequency, txnType string
	var dayOfMonth, dayOfWeek, weekOfMonth sql.NullInt64
	var nextExpected sql.NullTime
	var detectionMethod sql.NullString

	err := row.Scan(
		&p.ID, &p.MerchantGroupID, &p.MerchantName, &frequency, &p.Interval,
		&dayOfMonth, &dayOfWeek, &weekOfMonth,
		&p.ExpectedAmount, &p.AmountVariance, &p.IsAmountVariable,
		&txnType, &p.ConfidenceScore, &detectionMethod,
		&p.LastOccurrenceDate, &nextExpected, &p.OccurrenceCount,
		&p.IsActive, &p.IsConfirmed, &p.Notes, &p.ReminderEnabled, &p.ReminderDaysBefore,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.RecurringPattern{}, err
	}

	p.Frequency = model.Frequency(frequency)
	p.Type = model.TransactionType(txnType)
	if dayOfMonth.Valid {
		v := int(dayOfMonth.Int64)
		p.DayOfMonth = &v
	}
	if dayOfWeek.Valid {
		v := time.Weekday(dayOfWeek.Int64)
		p.DayOfWeek = &v
	}
	if weekOfMonth.Valid {
		v := int(weekOfMonth.Int64)
		p.WeekOfMonth = &v
	}
	if nextExpected.Valid {
		p.NextExpectedDate = nextExpected.Time
	}
	if detectionMethod.Valid {
		p.DetectionMethod = detectionMethod.String
	}
	return p, nil
}

// UpsertPatterns writes the reconciled pattern set for one merchant group.
// Existing rows keep their created_at; every other column reflects the
// reconciled record, user-owned fields included (the reconciler has already
// carried those over).
func (s *SQLiteStorage) UpsertPatterns(ctx context.Context, merchantGroupID string, patterns []model.RecurringPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(merchantGroupID, "merchantGroupID"); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}
	for i := range patterns {
		if patterns[i].MerchantGroupID != merchantGroupID {
			return fmt.Errorf("%w: pattern %s belongs to group %q, not %q",
				ErrInvalidPattern, patterns[i].ID, patterns[i].MerchantGroupID, merchantGroupID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recurring_patterns (
			id, merchant_group_id, merchant_name, frequency, interval,
			day_of_month, day_of_week, week_of_month,
			expected_amount, amount_variance, is_amount_variable,
			transaction_type, confidence_score, detection_method,
			last_occurrence_date, next_expected_date, occurrence_count,
			is_active, is_confirmed, notes, reminder_enabled, reminder_days_before
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			merchant_name = excluded.merchant_name,
			frequency = excluded.frequency,
			interval = excluded.interval,
			day_of_month = excluded.day_of_month,
			day_of_week = excluded.day_of_week,
			week_of_month = excluded.week_of_month,
			expected_amount = excluded.expected_amount,
			amount_variance = excluded.amount_variance,
			is_amount_variable = excluded.is_amount_variable,
			transaction_type = excluded.transaction_type,
			confidence_score = excluded.confidence_score,
			detection_method = excluded.detection_method,
			last_occurrence_date = excluded.last_occurrence_date,
			next_expected_date = excluded.next_expected_date,
			occurrence_count = excluded.occurrence_count,
			is_active = excluded.is_active,
			is_confirmed = excluded.is_confirmed,
			notes = excluded.notes,
			reminder_enabled = excluded.reminder_enabled,
			reminder_days_before = excluded.reminder_days_before,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range patterns {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.MerchantGroupID, p.MerchantName, string(p.Frequency), p.Interval,
			intPtrToNull(p.DayOfMonth), weekdayPtrToNull(p.DayOfWeek), intPtrToNull(p.WeekOfMonth),
			p.ExpectedAmount, p.AmountVariance, p.IsAmountVariable,
			string(p.Type), p.ConfidenceScore, p.DetectionMethod,
			p.LastOccurrenceDate, timeToNull(p.NextExpectedDate), p.OccurrenceCount,
			p.IsActive, p.IsConfirmed, p.Notes, p.ReminderEnabled, p.ReminderDaysBefore,
		); err != nil {
			return fmt.Errorf("failed to upsert pattern %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patterns: %w", err)
	}
	return nil
}

// GetPatternsByMerchantGroup returns the persisted patterns for one merchant
// group.
func (s *SQLiteStorage) GetPatternsByMerchantGroup(ctx context.Context, merchantGroupID string) ([]model.RecurringPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantGroupID, "merchantGroupID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + patternColumns + `
		FROM recurring_patterns
		WHERE merchant_group_id = ?
		ORDER BY transaction_type, expected_amount`

	return s.queryPatterns(ctx, query, merchantGroupID)
}

// ListPatterns returns all persisted patterns.
func (s *SQLiteStorage) ListPatterns(ctx context.Context) ([]model.RecurringPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + patternColumns + `
		FROM recurring_patterns
		ORDER BY merchant_name, transaction_type, expected_amount`

	return s.queryPatterns(ctx, query)
}

func (s *SQLiteStorage) queryPatterns(ctx context.Context, query string, args ...any) ([]model.RecurringPattern, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.RecurringPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}
	return patterns, nil
}

// GetPattern returns a single pattern by ID.
func (s *SQLiteStorage) GetPattern(ctx context.Context, id string) (*model.RecurringPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = ?`
	p, err := scanPattern(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pattern %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}
	return &p, nil
}

// SetPatternConfirmed updates the user-owned confirmation flag.
func (s *SQLiteStorage) SetPatternConfirmed(ctx context.Context, id string, confirmed bool) error {
	return s.updatePatternField(ctx, id,
		`UPDATE recurring_patterns SET is_confirmed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		confirmed, id)
}

// SetPatternNotes updates the user-owned notes field.
func (s *SQLiteStorage) SetPatternNotes(ctx context.Context, id string, notes string) error {
	return s.updatePatternField(ctx, id,
		`UPDATE recurring_patterns SET notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		notes, id)
}

// SetPatternReminder updates the user-owned reminder settings.
func (s *SQLiteStorage) SetPatternReminder(ctx context.Context, id string, enabled bool, daysBefore int) error {
	if daysBefore < 0 {
		return fmt.Errorf("%w: reminder days before cannot be negative", ErrInvalidPattern)
	}
	return s.updatePatternField(ctx, id,
		`UPDATE recurring_patterns SET reminder_enabled = ?, reminder_days_before = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		enabled, daysBefore, id)
}

// DeletePattern removes a pattern permanently.
func (s *SQLiteStorage) DeletePattern(ctx context.Context, id string) error {
	return s.updatePatternField(ctx, id, `DELETE FROM recurring_patterns WHERE id = ?`, id)
}

// updatePatternField runs a single-row statement and maps zero affected rows
// to ErrNotFound.
func (s *SQLiteStorage) updatePatternField(ctx context.Context, id, query string, args ...any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pattern %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pattern %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// intPtrToNull converts an optional int to sql.NullInt64.
func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// weekdayPtrToNull converts an optional weekday to sql.NullInt64.
func weekdayPtrToNull(v *time.Weekday) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// timeToNull converts a zero time to NULL.
func timeToNull(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
