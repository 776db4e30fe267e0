package model

import "time"

// Candidate is a classification suggestion awaiting human confirmation.
// It is produced exactly once per orchestration call and is immutable
// after creation.
type Candidate struct {
	ProducedAt   time.Time
	Category     string
	CurrencyCode string
	Comment      string
	Amount       float64
	Confidence   float64
	CostEstimate float64
}
