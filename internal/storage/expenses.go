package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtrella/outlay/internal/common"
	"github.com/mtrella/outlay/internal/model"
	"github.com/mtrella/outlay/internal/service"
)

const expenseColumns = `id, session_id, description, category, amount, currency_code,
	provenance, confidence, comment, cost_estimate, created_at`

// AddExpense inserts a finalized expense and assigns its storage ID.
func (s *SQLiteStorage) AddExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	createdAt := expense.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (session_id, description, category, amount, currency_code,
			provenance, confidence, comment, cost_estimate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.SessionID, expense.Description, expense.Category, expense.Amount,
		expense.CurrencyCode, string(expense.Provenance), expense.Confidence,
		expense.Comment, expense.CostEstimate, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}
	expense.ID = id
	expense.CreatedAt = createdAt

	slog.Debug("stored expense",
		"id", id,
		"category", expense.Category,
		"provenance", expense.Provenance)
	return nil
}

// GetExpenseByID returns a single expense by its storage ID.
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense %d: %w", id, err)
	}
	return expense, nil
}

// ListExpenses returns current (non-superseded) expenses matching the
// filter, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	conditions = append(conditions, "superseded_by IS NULL")
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, *filter.Until)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", scanErr)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// ReplaceExpenseCategory corrects an expense's category by writing a
// replacement row and an audit note. The original row is marked superseded,
// never edited in place. The replacement records the caller's provenance and
// confidence so human corrections and machine re-classifications stay
// distinguishable in the audit trail.
func (s *SQLiteStorage) ReplaceExpenseCategory(ctx context.Context, id int64, category string, provenance model.Provenance, confidence float64, note string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}
	switch provenance {
	case model.ProvenanceAutoClassified, model.ProvenanceHumanConfirmed, model.ProvenanceHumanOverridden:
	default:
		return nil, fmt.Errorf("%w: unknown provenance %q", ErrInvalidExpense, provenance)
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %.3f outside [0, 1]", ErrInvalidExpense, confidence)
	}

	original, err := s.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var superseded sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT superseded_by FROM expenses WHERE id = ?`, id).Scan(&superseded)
	if err != nil {
		return nil, fmt.Errorf("failed to check expense %d: %w", id, err)
	}
	if superseded.Valid {
		return nil, fmt.Errorf("expense %d already superseded by %d", id, superseded.Int64)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (session_id, description, category, amount, currency_code,
			provenance, confidence, comment, cost_estimate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		original.SessionID, original.Description, category, original.Amount,
		original.CurrencyCode, string(provenance), confidence,
		original.Comment, original.CostEstimate, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert replacement expense: %w", err)
	}

	replacementID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get replacement ID: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE expenses SET superseded_by = ? WHERE id = ?`,
		replacementID, id); err != nil {
		return nil, fmt.Errorf("failed to mark expense %d superseded: %w", id, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO expense_audit (expense_id, replacement_id, note) VALUES (?, ?, ?)`,
		id, replacementID, note); err != nil {
		return nil, fmt.Errorf("failed to record audit note: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit replacement: %w", err)
	}

	replacement := *original
	replacement.ID = replacementID
	replacement.Category = category
	replacement.Provenance = provenance
	replacement.Confidence = confidence
	replacement.CreatedAt = now

	slog.Info("replaced expense category",
		"expense_id", id,
		"replacement_id", replacementID,
		"old_category", original.Category,
		"new_category", category)
	return &replacement, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var expense model.Expense
	var provenance string
	err := row.Scan(&expense.ID, &expense.SessionID, &expense.Description,
		&expense.Category, &expense.Amount, &expense.CurrencyCode,
		&provenance, &expense.Confidence, &expense.Comment,
		&expense.CostEstimate, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}
	expense.Provenance = model.Provenance(provenance)
	return &expense, nil
}
