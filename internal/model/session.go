package model

import "time"

// SessionState tracks a user's progress through the classify, confirm,
// persist sequence.
type SessionState string

// Session state constants.
const (
	StateAwaitingInput        SessionState = "AWAITING_INPUT"
	StateAwaitingConfirmation SessionState = "AWAITING_CONFIRMATION"
	StateTerminal             SessionState = "TERMINAL"
)

// Session is one user's in-flight expense entry conversation. At most one
// session exists per user identifier at a time.
//
// A session in StateAwaitingConfirmation always carries a non-nil
// PendingCandidate and a non-empty PendingDescription.
type Session struct {
	StartedAt          time.Time
	UpdatedAt          time.Time
	PendingCandidate   *Candidate
	ID                 string
	PendingDescription string
	State              SessionState
}
