// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mtrella/outlay/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	Since     *time.Time
	Until     *time.Time
	Category  string
	SessionID string
	Limit     int
}

// Storage defines the contract for the persistence collaborator.
//
// AddExpense is the only operation the conversation core calls, exactly once
// per completed session, and never retries internally. Categories keeps the
// taxonomy authoritative. Everything else serves the CLI collaborators.
type Storage interface {
	// Expense operations
	AddExpense(ctx context.Context, expense *model.Expense) error
	GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	// ReplaceExpenseCategory writes a replacement row for an expense whose
	// category was corrected after the fact, plus an audit note. The original
	// row is marked superseded, never edited in place. The caller states how
	// the new category was decided: a human correction carries
	// HUMAN_OVERRIDDEN at confidence 1.0, a machine re-classification carries
	// AUTO_CLASSIFIED at the classifier's confidence.
	ReplaceExpenseCategory(ctx context.Context, id int64, category string, provenance model.Provenance, confidence float64, note string) (*model.Expense, error)

	// Category operations
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*model.Category, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
