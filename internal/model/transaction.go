// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

// Transaction type constants.
const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction represents a single financial transaction as seen by the
// recurring-detection engine. Transactions arrive already grouped by
// merchant; the upstream import pipeline owns cleanup and deduplication.
type Transaction struct {
	Date            time.Time
	ID              string
	MerchantGroupID string
	MerchantName    string // Denormalized for display
	Type            TransactionType
	Amount          float64 // Magnitude; direction is carried by Type
}

// Validate ensures the transaction satisfies the caller contract.
// A violation here indicates a bug upstream, not bad user data.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: missing date", t.ID)
	}
	if t.MerchantGroupID == "" {
		return fmt.Errorf("transaction %s: missing merchant group ID", t.ID)
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction %s: negative amount %.2f", t.ID, t.Amount)
	}
	switch t.Type {
	case TypeIncome, TypeExpense:
	default:
		return fmt.Errorf("transaction %s: invalid type %q", t.ID, t.Type)
	}
	return nil
}
