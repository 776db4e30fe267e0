// Package conversation implements the per-user confirmation dialogue that
// turns classification candidates into finalized expenses.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtrella/outlay/internal/common"
	"github.com/mtrella/outlay/internal/model"
	"github.com/mtrella/outlay/internal/preprocess"
	"github.com/mtrella/outlay/internal/taxonomy"
)

// Classifier produces exactly one classification candidate per call.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Candidate, error)
}

// Store persists finalized expenses.
type Store interface {
	AddExpense(ctx context.Context, expense *model.Expense) error
}

// Choice is a confirmation response: accept the candidate as-is, name a
// category, or cancel the dialogue. Exactly one field should be set.
type Choice struct {
	Category string
	Accept   bool
	Cancel   bool
}

// Accept builds the choice that takes the candidate unchanged.
func Accept() Choice { return Choice{Accept: true} }

// Cancel builds the choice that abandons the dialogue.
func Cancel() Choice { return Choice{Cancel: true} }

// Choose builds the choice that names a category explicitly.
func Choose(category string) Choice { return Choice{Category: category} }

// TextResult is returned when a text event produced a candidate that now
// awaits confirmation.
type TextResult struct {
	Candidate model.Candidate
	Warnings  []string
}

// ConfirmResult reports the outcome of a confirmation event. Expense is nil
// when the dialogue was cancelled.
type ConfirmResult struct {
	Expense   *model.Expense
	Cancelled bool
}

// Manager owns the session registry and drives each session's state machine.
// At most one transition runs per session id at a time; concurrent events for
// the same session are rejected with ErrSessionBusy. Different sessions
// proceed independently.
type Manager struct {
	classifier Classifier
	store      Store
	pre        *preprocess.Preprocessor
	tax        *taxonomy.Taxonomy
	sessions   map[string]*slot
	now        func() time.Time
	mu         sync.Mutex
}

// slot is a registry entry. busy marks a transition in flight; the session
// value is only read or replaced under the registry mutex.
type slot struct {
	session model.Session
	busy    bool
}

// NewManager creates a conversation manager. The taxonomy validates human
// category overrides and normally comes from the classifier's category set.
func NewManager(classifier Classifier, store Store, tax *taxonomy.Taxonomy) *Manager {
	return &Manager{
		classifier: classifier,
		store:      store,
		pre:        preprocess.New(),
		tax:        tax,
		sessions:   make(map[string]*slot),
		now:        time.Now,
	}
}

// OnText handles an inbound description. For a session awaiting input it
// validates, classifies exactly once, and moves the session to
// AwaitingConfirmation. Validation and classification failures leave the
// session awaiting input; the same text may be re-submitted.
func (m *Manager) OnText(ctx context.Context, sessionID, text string) (*TextResult, error) {
	if sessionID == "" {
		return nil, &common.ValidationError{Reason: "empty session id"}
	}

	session, err := m.acquire(sessionID, true)
	if err != nil {
		return nil, err
	}
	keep := session
	defer func() { m.release(sessionID, &keep) }()

	if session.State == model.StateAwaitingConfirmation {
		return nil, &common.InvalidTransitionError{Event: "text", State: session.State}
	}

	res := m.pre.Preprocess(text)
	if !res.Valid {
		return nil, &common.ValidationError{Reason: res.Err}
	}

	candidate, err := m.classifier.Classify(ctx, res.NormalizedText)
	if err != nil {
		return nil, err
	}

	keep.State = model.StateAwaitingConfirmation
	keep.PendingDescription = res.NormalizedText
	keep.PendingCandidate = &candidate
	keep.UpdatedAt = m.now()

	slog.Debug("candidate awaiting confirmation",
		"session_id", sessionID,
		"category", candidate.Category,
		"confidence", candidate.Confidence)

	return &TextResult{Candidate: candidate, Warnings: res.Warnings}, nil
}

// OnConfirmation handles a confirmation response for a session awaiting one.
// Accept persists the candidate as auto-classified; naming the candidate's
// own category persists it as human-confirmed; naming a different taxonomy
// category persists it as human-overridden with confidence forced to 1.0.
// Cancel discards the pending state without persisting. A persistence
// failure keeps the session awaiting confirmation so the response can be
// retried without re-classification.
func (m *Manager) OnConfirmation(ctx context.Context, sessionID string, choice Choice) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, &common.ValidationError{Reason: "empty session id"}
	}

	session, err := m.acquire(sessionID, false)
	if err != nil {
		if errors.Is(err, errNoSession) {
			if choice.Cancel {
				// Nothing to cancel; treat as already done.
				return &ConfirmResult{Cancelled: true}, nil
			}
			return nil, &common.InvalidTransitionError{Event: "confirmation", State: model.StateAwaitingInput}
		}
		return nil, err
	}
	keep := session
	defer func() { m.release(sessionID, &keep) }()

	if choice.Cancel {
		keep = model.Session{ID: sessionID, State: model.StateAwaitingInput}
		slog.Debug("session cancelled", "session_id", sessionID)
		return &ConfirmResult{Cancelled: true}, nil
	}

	if session.State != model.StateAwaitingConfirmation || session.PendingCandidate == nil {
		return nil, &common.InvalidTransitionError{Event: "confirmation", State: session.State}
	}

	candidate := *session.PendingCandidate
	category := candidate.Category
	confidence := candidate.Confidence
	provenance := model.ProvenanceAutoClassified

	if !choice.Accept {
		if choice.Category == "" {
			return nil, &common.ValidationError{Reason: "empty confirmation choice"}
		}
		chosen, ok := m.tax.Resolve(choice.Category)
		if !ok {
			return nil, &common.ValidationError{Reason: fmt.Sprintf("unknown category %q", choice.Category)}
		}
		if chosen == candidate.Category {
			provenance = model.ProvenanceHumanConfirmed
		} else {
			category = chosen
			confidence = 1.0
			provenance = model.ProvenanceHumanOverridden
		}
	}

	expense := &model.Expense{
		CreatedAt:    m.now(),
		SessionID:    sessionID,
		Description:  session.PendingDescription,
		Category:     category,
		CurrencyCode: candidate.CurrencyCode,
		Comment:      candidate.Comment,
		Provenance:   provenance,
		Amount:       candidate.Amount,
		Confidence:   confidence,
		CostEstimate: candidate.CostEstimate,
	}

	if err := m.store.AddExpense(ctx, expense); err != nil {
		// Pending state stays intact for a retry.
		return nil, &common.PersistenceError{Err: err}
	}

	keep.State = model.StateTerminal
	keep.UpdatedAt = m.now()

	slog.Info("expense finalized",
		"session_id", sessionID,
		"category", expense.Category,
		"provenance", expense.Provenance,
		"confidence", expense.Confidence)

	return &ConfirmResult{Expense: expense}, nil
}

// Session returns a snapshot of the registry entry for id.
func (m *Manager) Session(sessionID string) (model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return model.Session{}, false
	}

	out := s.session
	if s.session.PendingCandidate != nil {
		candidate := *s.session.PendingCandidate
		out.PendingCandidate = &candidate
	}
	return out, true
}

// Active returns the number of sessions in the registry.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ExpireIdle removes sessions whose last transition completed more than
// olderThan ago. Busy sessions are never expired. It returns the number of
// sessions removed.
func (m *Manager) ExpireIdle(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-olderThan)
	removed := 0
	for id, s := range m.sessions {
		if s.busy || s.session.UpdatedAt.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}

	if removed > 0 {
		slog.Info("expired idle sessions", "count", removed, "older_than", olderThan)
	}
	return removed
}

// errNoSession is internal to acquire; callers translate it per event type.
var errNoSession = errors.New("no active session")

// acquire claims the single-writer turn for a session. With create set, a
// missing session starts in AwaitingInput. The returned value is a snapshot;
// the live entry is only replaced by release.
func (m *Manager) acquire(sessionID string, create bool) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		if !create {
			return model.Session{}, errNoSession
		}
		now := m.now()
		s = &slot{session: model.Session{
			ID:        sessionID,
			State:     model.StateAwaitingInput,
			StartedAt: now,
			UpdatedAt: now,
		}}
		m.sessions[sessionID] = s
	}
	if s.busy {
		return model.Session{}, common.ErrSessionBusy
	}
	s.busy = true
	return s.session, nil
}

// release publishes the transition outcome and clears the busy flag.
// Terminal sessions and sessions back in AwaitingInput with nothing pending
// are dropped; an absent session is equivalent to AwaitingInput.
func (m *Manager) release(sessionID string, session *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.State == model.StateTerminal ||
		(session.State == model.StateAwaitingInput && session.PendingCandidate == nil) {
		delete(m.sessions, sessionID)
		return
	}
	if s, ok := m.sessions[sessionID]; ok {
		s.session = *session
		s.busy = false
	}
}
