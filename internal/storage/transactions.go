package storage

import (
	"context"
	"fmt"

	"github.com/sagebudget/sage/internal/model"
)

// SaveTransactions persists transactions, ignoring duplicates by ID so
// re-imports are safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, merchant_group_id, merchant_name, date, amount, transaction_type
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range txns {
		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.MerchantGroupID, txn.MerchantName,
			txn.Date, txn.Amount, string(txn.Type),
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

// GetTransactionsByMerchantGroup returns a group's transactions in ascending
// date order.
func (s *SQLiteStorage) GetTransactionsByMerchantGroup(ctx context.Context, merchantGroupID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantGroupID, "merchantGroupID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, merchant_group_id, merchant_name, date, amount, transaction_type
		FROM transactions
		WHERE merchant_group_id = ?
		ORDER BY date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, merchantGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var txnType string
		if err := rows.Scan(&txn.ID, &txn.MerchantGroupID, &txn.MerchantName,
			&txn.Date, &txn.Amount, &txnType); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = model.TransactionType(txnType)
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// ListMerchantGroups returns the distinct merchant group IDs present in the
// transaction store.
func (s *SQLiteStorage) ListMerchantGroups(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT merchant_group_id FROM transactions ORDER BY merchant_group_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchant groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan merchant group: %w", err)
		}
		groups = append(groups, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merchant groups: %w", err)
	}
	return groups, nil
}
