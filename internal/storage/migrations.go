package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					session_id TEXT NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					amount REAL NOT NULL,
					currency_code TEXT NOT NULL DEFAULT '',
					provenance TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					comment TEXT NOT NULL DEFAULT '',
					cost_estimate REAL NOT NULL DEFAULT 0,
					superseded_by INTEGER REFERENCES expenses(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_session ON expenses(session_id)`,
				`CREATE INDEX idx_expenses_category ON expenses(category)`,
				`CREATE INDEX idx_expenses_created_at ON expenses(created_at)`,
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
		Description: "Add expense audit trail for corrections",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS expense_audit (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					expense_id INTEGER NOT NULL REFERENCES expenses(id),
					replacement_id INTEGER NOT NULL REFERENCES expenses(id),
					note TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expense_audit_expense_id ON expense_audit(expense_id)`,
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
		Version:     3,
		Description: "Seed default category taxonomy",
		Up: func(tx *sql.Tx) error {
			defaults := []struct {
				name        string
				description string
			}{
				{"Food", "Restaurants, cafes, takeout, and coffee"},
				{"Groceries", "Supermarket and food store purchases"},
				{"Transport", "Public transit, fuel, parking, ride shares"},
				{"Housing", "Rent, mortgage, repairs, furniture"},
				{"Utilities", "Power, water, internet, phone plans"},
				{"Entertainment", "Movies, games, events, subscriptions"},
				{"Health", "Pharmacy, doctor visits, fitness"},
				{"Shopping", "Clothing, electronics, general retail"},
				{"Travel", "Flights, hotels, trips away from home"},
				{"Other", "Anything that fits no other category"},
			}

			for _, cat := range defaults {
				_, err := tx.Exec(
					`INSERT OR IGNORE INTO categories (name, description) VALUES (?, ?)`,
					cat.name, cat.description)
				if err != nil {
					return fmt.Errorf("failed to seed category %q: %w", cat.name, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
