package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtrella/outlay/internal/amqp"
	"github.com/mtrella/outlay/internal/conversation"
	"github.com/mtrella/outlay/internal/model"
	"github.com/mtrella/outlay/internal/service"
	"github.com/mtrella/outlay/internal/taxonomy"
)

type mockClassifier struct {
	candidate model.Candidate
	err       error
	calls     int
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (model.Candidate, error) {
	m.calls++
	if m.err != nil {
		return model.Candidate{}, m.err
	}
	return m.candidate, nil
}

type mockStore struct {
	expenses []model.Expense
	failures int
}

func (m *mockStore) AddExpense(_ context.Context, expense *model.Expense) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("database is locked")
	}
	expense.ID = int64(len(m.expenses) + 1)
	m.expenses = append(m.expenses, *expense)
	return nil
}

type mockPublisher struct {
	replies  []*amqp.Reply
	failures int
}

func (m *mockPublisher) PublishReply(_ context.Context, reply *amqp.Reply) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("channel closed")
	}
	m.replies = append(m.replies, reply)
	return nil
}

func newTestWorker(classifier *mockClassifier, store *mockStore, publisher *mockPublisher) *EventWorker {
	tax := taxonomy.New([]string{"Food", "Transport", "Other"})
	manager := conversation.NewManager(classifier, store, tax)
	return New(manager, publisher, service.RetryOptions{MaxAttempts: 1})
}

func foodCandidate() model.Candidate {
	return model.Candidate{
		Category:     "Food",
		Amount:       5.50,
		CurrencyCode: "USD",
		Confidence:   0.9,
	}
}

func TestHandleEvent_TextProducesConfirmationRequest(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, &mockStore{}, publisher)

	err := w.HandleEvent(context.Background(), &amqp.InboundEvent{
		SessionID: "u1",
		Kind:      amqp.EventText,
		Text:      "Coffee at Starbucks $5.50",
	})
	require.NoError(t, err)

	require.Len(t, publisher.replies, 1)
	reply := publisher.replies[0]
	assert.Equal(t, amqp.ReplyConfirmationRequest, reply.Kind)
	assert.Equal(t, "u1", reply.SessionID)
	require.NotNil(t, reply.Candidate)
	assert.Equal(t, "Food", reply.Candidate.Category)
	assert.InDelta(t, 5.50, reply.Candidate.Amount, 1e-9)
	assert.Equal(t, 1, classifier.calls)
}

func TestHandleEvent_InvalidTextAnsweredWithoutClassifying(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, &mockStore{}, publisher)

	err := w.HandleEvent(context.Background(), &amqp.InboundEvent{
		SessionID: "u1",
		Kind:      amqp.EventText,
		Text:      "ab",
	})
	require.NoError(t, err)

	require.Len(t, publisher.replies, 1)
	assert.Equal(t, amqp.ReplyError, publisher.replies[0].Kind)
	assert.Contains(t, publisher.replies[0].Error, "too short")
	assert.Zero(t, classifier.calls)
}

func TestHandleEvent_ConfirmProducesReceipt(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	store := &mockStore{}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, store, publisher)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventText, Text: "Coffee at Starbucks $5.50",
	}))
	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventConfirm, Accept: true,
	}))

	require.Len(t, store.expenses, 1)
	assert.Equal(t, model.ProvenanceAutoClassified, store.expenses[0].Provenance)

	require.Len(t, publisher.replies, 2)
	receipt := publisher.replies[1]
	assert.Equal(t, amqp.ReplyReceipt, receipt.Kind)
	require.NotNil(t, receipt.Expense)
	assert.Equal(t, "Food", receipt.Expense.Category)
	assert.Equal(t, string(model.ProvenanceAutoClassified), receipt.Expense.Provenance)
}

func TestHandleEvent_OverrideForcesConfidence(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	store := &mockStore{}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, store, publisher)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventText, Text: "Taxi to the airport $30",
	}))
	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventConfirm, Category: "Transport",
	}))

	require.Len(t, store.expenses, 1)
	assert.Equal(t, model.ProvenanceHumanOverridden, store.expenses[0].Provenance)
	assert.Equal(t, "Transport", store.expenses[0].Category)
	assert.InDelta(t, 1.0, store.expenses[0].Confidence, 1e-9)
}

func TestHandleEvent_PersistenceFailureRequeues(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	store := &mockStore{failures: 1}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, store, publisher)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventText, Text: "Coffee at Starbucks $5.50",
	}))

	confirm := &amqp.InboundEvent{SessionID: "u1", Kind: amqp.EventConfirm, Accept: true}

	// First delivery fails and asks for a requeue.
	err := w.HandleEvent(ctx, confirm)
	require.Error(t, err)
	assert.Empty(t, store.expenses)

	// Redelivery persists without re-classifying.
	require.NoError(t, w.HandleEvent(ctx, confirm))
	require.Len(t, store.expenses, 1)
	assert.Equal(t, 1, classifier.calls)
}

func TestHandleEvent_CancelAnswersCancelled(t *testing.T) {
	classifier := &mockClassifier{candidate: foodCandidate()}
	store := &mockStore{}
	publisher := &mockPublisher{}
	w := newTestWorker(classifier, store, publisher)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventText, Text: "Coffee at Starbucks $5.50",
	}))
	require.NoError(t, w.HandleEvent(ctx, &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventCancel,
	}))

	assert.Empty(t, store.expenses)
	require.Len(t, publisher.replies, 2)
	assert.Equal(t, amqp.ReplyCancelled, publisher.replies[1].Kind)
}

func TestHandleEvent_ConfirmWithoutSessionAnswersError(t *testing.T) {
	publisher := &mockPublisher{}
	w := newTestWorker(&mockClassifier{candidate: foodCandidate()}, &mockStore{}, publisher)

	err := w.HandleEvent(context.Background(), &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventConfirm, Accept: true,
	})
	require.NoError(t, err)

	require.Len(t, publisher.replies, 1)
	assert.Equal(t, amqp.ReplyError, publisher.replies[0].Kind)
	assert.Contains(t, publisher.replies[0].Error, "invalid transition")
}

func TestHandleEvent_PublishFailurePropagates(t *testing.T) {
	publisher := &mockPublisher{failures: 1}
	w := newTestWorker(&mockClassifier{candidate: foodCandidate()}, &mockStore{}, publisher)

	err := w.HandleEvent(context.Background(), &amqp.InboundEvent{
		SessionID: "u1", Kind: amqp.EventText, Text: "Coffee at Starbucks $5.50",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish reply")
}
