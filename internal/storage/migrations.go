package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: transactions and recurring patterns",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					merchant_group_id TEXT NOT NULL,
					merchant_name TEXT,
					date DATETIME NOT NULL,
					amount REAL NOT NULL,
					transaction_type TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_merchant_group ON transactions(merchant_group_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,

				`CREATE TABLE IF NOT EXISTS recurring_patterns (
					id TEXT PRIMARY KEY,
					merchant_group_id TEXT NOT NULL,
					merchant_name TEXT,
					frequency TEXT NOT NULL,
					interval INTEGER NOT NULL DEFAULT 1,
					day_of_month INTEGER,
					day_of_week INTEGER,
					week_of_month INTEGER,
					expected_amount REAL NOT NULL,
					amount_variance REAL NOT NULL DEFAULT 0,
					is_amount_variable INTEGER NOT NULL DEFAULT 0,
					transaction_type TEXT NOT NULL,
					confidence_score REAL NOT NULL DEFAULT 0,
					detection_method TEXT,
					last_occurrence_date DATETIME NOT NULL,
					next_expected_date DATETIME,
					occurrence_count INTEGER NOT NULL,
					is_active INTEGER NOT NULL DEFAULT 1,
					is_confirmed INTEGER NOT NULL DEFAULT 0,
					notes TEXT NOT NULL DEFAULT '',
					reminder_enabled INTEGER NOT NULL DEFAULT 1,
					reminder_days_before INTEGER NOT NULL DEFAULT 2,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_recurring_patterns_merchant_group ON recurring_patterns(merchant_group_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index active patterns for reminder queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_recurring_patterns_active
				ON recurring_patterns(is_active, next_expected_date)`)
			return err
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, migration.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
