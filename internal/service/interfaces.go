// Package service defines the interfaces between the application's layers.
package service

import (
	"context"

	"github.com/sagebudget/sage/internal/model"
)

// Storage defines the persistence contract for transactions and recurring
// patterns. The detection engine itself never touches storage; reading
// transactions and persisting patterns happens around engine invocations.
type Storage interface {
	// SaveTransactions persists transactions, skipping duplicates by ID.
	SaveTransactions(ctx context.Context, txns []model.Transaction) error

	// GetTransactionsByMerchantGroup returns a group's transactions in
	// ascending date order.
	GetTransactionsByMerchantGroup(ctx context.Context, merchantGroupID string) ([]model.Transaction, error)

	// ListMerchantGroups returns the distinct merchant group IDs present in
	// the transaction store.
	ListMerchantGroups(ctx context.Context) ([]string, error)

	// GetPatternsByMerchantGroup returns the persisted patterns for one
	// merchant group.
	GetPatternsByMerchantGroup(ctx context.Context, merchantGroupID string) ([]model.RecurringPattern, error)

	// ListPatterns returns all persisted patterns.
	ListPatterns(ctx context.Context) ([]model.RecurringPattern, error)

	// GetPattern returns a single pattern by ID.
	GetPattern(ctx context.Context, id string) (*model.RecurringPattern, error)

	// UpsertPatterns replaces the stored patterns for one merchant group
	// with the reconciled set, inside a transaction.
	UpsertPatterns(ctx context.Context, merchantGroupID string, patterns []model.RecurringPattern) error

	// SetPatternConfirmed, SetPatternNotes and SetPatternReminder update
	// user-owned fields. These are the only write paths for those fields
	// outside of pattern creation.
	SetPatternConfirmed(ctx context.Context, id string, confirmed bool) error
	SetPatternNotes(ctx context.Context, id string, notes string) error
	SetPatternReminder(ctx context.Context, id string, enabled bool, daysBefore int) error

	// DeletePattern removes a pattern permanently. Deletion is always an
	// explicit user action, never something the engine does.
	DeletePattern(ctx context.Context, id string) error

	// Migrate brings the database schema up to date.
	Migrate(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
