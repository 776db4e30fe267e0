// Package storage provides the SQLite persistence layer for finalized
// expenses and the category taxonomy.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mtrella/outlay/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
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

// validateExpense validates an expense before it is written.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.SessionID == "" {
		return fmt.Errorf("%w: missing session ID", ErrInvalidExpense)
	}
	if expense.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidExpense)
	}
	if expense.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if math.IsNaN(expense.Amount) || math.IsInf(expense.Amount, 0) {
		return fmt.Errorf("%w: amount is not a finite number", ErrInvalidExpense)
	}
	switch expense.Provenance {
	case model.ProvenanceAutoClassified, model.ProvenanceHumanConfirmed, model.ProvenanceHumanOverridden:
	default:
		return fmt.Errorf("%w: unknown provenance %q", ErrInvalidExpense, expense.Provenance)
	}
	if expense.Confidence < 0 || expense.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f outside [0, 1]", ErrInvalidExpense, expense.Confidence)
	}
	return nil
}
