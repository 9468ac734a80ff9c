package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sagebudget/sage/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPattern     = errors.New("invalid recurring pattern")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(txns []model.Transaction) error {
	if txns == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(txns) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range txns {
		if txn.ID == "" {
			return fmt.Errorf("%w: transaction at index %d missing ID", ErrInvalidTransaction, i)
		}
		if err := txn.Validate(); err != nil {
			return fmt.Errorf("%w: transaction at index %d: %v", ErrInvalidTransaction, i, err)
		}
	}
	return nil
}

// validatePatterns validates a slice of recurring patterns.
func validatePatterns(patterns []model.RecurringPattern) error {
	for i, p := range patterns {
		if p.ID == "" {
			return fmt.Errorf("%w: pattern at index %d missing ID", ErrInvalidPattern, i)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: pattern at index %d: %v", ErrInvalidPattern, i, err)
		}
	}
	return nil
}
