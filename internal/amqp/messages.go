// Package amqp implements the RabbitMQ bridge between messaging frontends
// and the conversation core. Frontends publish inbound events; the worker
// answers with structured replies that the frontend renders.
package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtrella/outlay/internal/model"
)

// Inbound event kinds.
const (
	EventText    = "text"
	EventConfirm = "confirm"
	EventCancel  = "cancel"
)

// Reply kinds.
const (
	ReplyConfirmationRequest = "confirmation_request"
	ReplyReceipt             = "receipt"
	ReplyCancelled           = "cancelled"
	ReplyError               = "error"
)

// InboundEvent is one message from a frontend: a free-text description, a
// confirmation choice, or a cancellation.
type InboundEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Category  string    `json:"category,omitempty"`
	Accept    bool      `json:"accept,omitempty"`
}

// Validate checks the event shape before it reaches the conversation core.
func (e *InboundEvent) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("missing session_id")
	}
	switch e.Kind {
	case EventText:
		if e.Text == "" {
			return fmt.Errorf("text event without text")
		}
	case EventConfirm:
		if !e.Accept && e.Category == "" {
			return fmt.Errorf("confirm event needs accept or category")
		}
	case EventCancel:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

// ToJSON converts the event to JSON bytes.
func (e *InboundEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InboundEventFromJSON creates an event from JSON bytes.
func InboundEventFromJSON(data []byte) (*InboundEvent, error) {
	var event InboundEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CandidatePayload is the wire form of a classification candidate awaiting
// confirmation.
type CandidatePayload struct {
	Category     string  `json:"category"`
	CurrencyCode string  `json:"currency_code,omitempty"`
	Comment      string  `json:"comment,omitempty"`
	Amount       float64 `json:"amount"`
	Confidence   float64 `json:"confidence"`
}

// ExpensePayload is the wire form of a finalized expense receipt.
type ExpensePayload struct {
	Category     string  `json:"category"`
	CurrencyCode string  `json:"currency_code,omitempty"`
	Provenance   string  `json:"provenance"`
	Description  string  `json:"description"`
	ID           int64   `json:"id"`
	Amount       float64 `json:"amount"`
	Confidence   float64 `json:"confidence"`
}

// Reply is one message back to the frontend. Rendering is the frontend's
// concern; the worker only reports structure.
type Reply struct {
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id"`
	Kind      string            `json:"kind"`
	Error     string            `json:"error,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Candidate *CandidatePayload `json:"candidate,omitempty"`
	Expense   *ExpensePayload   `json:"expense,omitempty"`
}

// ToJSON converts the reply to JSON bytes.
func (r *Reply) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReplyFromJSON creates a reply from JSON bytes.
func ReplyFromJSON(data []byte) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// NewCandidatePayload converts a domain candidate to its wire form.
func NewCandidatePayload(c model.Candidate) *CandidatePayload {
	return &CandidatePayload{
		Category:     c.Category,
		CurrencyCode: c.CurrencyCode,
		Comment:      c.Comment,
		Amount:       c.Amount,
		Confidence:   c.Confidence,
	}
}

// NewExpensePayload converts a finalized expense to its wire form.
func NewExpensePayload(e *model.Expense) *ExpensePayload {
	return &ExpensePayload{
		Category:     e.Category,
		CurrencyCode: e.CurrencyCode,
		Provenance:   string(e.Provenance),
		Description:  e.Description,
		ID:           e.ID,
		Amount:       e.Amount,
		Confidence:   e.Confidence,
	}
}
