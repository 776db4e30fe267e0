// Package model defines the core domain models used throughout the application.
package model

import "time"

// Provenance records how a persisted expense's category was decided.
type Provenance string

// Provenance constants.
const (
	// ProvenanceAutoClassified means the user accepted the suggestion as-is.
	ProvenanceAutoClassified Provenance = "AUTO_CLASSIFIED"
	// ProvenanceHumanConfirmed means the user explicitly picked the same
	// category the classifier suggested.
	ProvenanceHumanConfirmed Provenance = "HUMAN_CONFIRMED"
	// ProvenanceHumanOverridden means the user picked a different category.
	ProvenanceHumanOverridden Provenance = "HUMAN_OVERRIDDEN"
)

// Expense is a finalized expense record. It is created only by the
// confirmation step and never mutated afterward; corrections write a
// replacement row plus an audit note.
type Expense struct {
	CreatedAt    time.Time
	SessionID    string
	Description  string
	Category     string
	CurrencyCode string
	Comment      string
	Provenance   Provenance
	ID           int64
	Amount       float64
	Confidence   float64
	CostEstimate float64
}
