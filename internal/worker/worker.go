// Package worker runs the inbound event loop: it dispatches AMQP events
// into the conversation manager and publishes structured replies.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mtrella/outlay/internal/amqp"
	"github.com/mtrella/outlay/internal/common"
	"github.com/mtrella/outlay/internal/conversation"
	"github.com/mtrella/outlay/internal/service"
)

// Conversation is the slice of the conversation manager the worker drives.
type Conversation interface {
	OnText(ctx context.Context, sessionID, text string) (*conversation.TextResult, error)
	OnConfirmation(ctx context.Context, sessionID string, choice conversation.Choice) (*conversation.ConfirmResult, error)
}

// ReplyPublisher publishes replies back to the frontend queue.
type ReplyPublisher interface {
	PublishReply(ctx context.Context, reply *amqp.Reply) error
}

// EventWorker turns inbound events into conversation transitions. Domain
// failures become error replies for the user; only transient infrastructure
// failures (persistence, reply publishing) propagate so the delivery is
// requeued.
type EventWorker struct {
	conversations Conversation
	publisher     ReplyPublisher
	retryOpts     service.RetryOptions
}

// New creates an event worker. The retry options govern reply publishing
// only; the conversation core itself never retries.
func New(conversations Conversation, publisher ReplyPublisher, retryOpts service.RetryOptions) *EventWorker {
	return &EventWorker{
		conversations: conversations,
		publisher:     publisher,
		retryOpts:     retryOpts,
	}
}

// HandleEvent processes one inbound event. A returned error means the
// delivery should be retried (requeued); nil means it was fully handled,
// including events answered with an error reply.
func (w *EventWorker) HandleEvent(ctx context.Context, event *amqp.InboundEvent) error {
	reply, err := w.dispatch(ctx, event)
	if err != nil {
		return err
	}

	publishErr := common.WithRetry(ctx, func() error {
		return w.publisher.PublishReply(ctx, reply)
	}, w.retryOpts)
	if publishErr != nil {
		return fmt.Errorf("publish reply for session %s: %w", event.SessionID, publishErr)
	}
	return nil
}

// dispatch runs the transition and builds the reply. A persistence failure
// is the one case that surfaces as an error: the session keeps its pending
// candidate, so redelivering the confirmation retries the write without
// re-classifying.
func (w *EventWorker) dispatch(ctx context.Context, event *amqp.InboundEvent) (*amqp.Reply, error) {
	switch event.Kind {
	case amqp.EventText:
		result, err := w.conversations.OnText(ctx, event.SessionID, event.Text)
		if err != nil {
			return errorReply(event.SessionID, err), nil
		}
		return &amqp.Reply{
			SessionID: event.SessionID,
			Kind:      amqp.ReplyConfirmationRequest,
			Candidate: amqp.NewCandidatePayload(result.Candidate),
			Warnings:  result.Warnings,
		}, nil

	case amqp.EventConfirm:
		choice := conversation.Choose(event.Category)
		if event.Accept {
			choice = conversation.Accept()
		}
		result, err := w.conversations.OnConfirmation(ctx, event.SessionID, choice)
		if err != nil {
			var persistenceErr *common.PersistenceError
			if errors.As(err, &persistenceErr) {
				return nil, err
			}
			return errorReply(event.SessionID, err), nil
		}
		return &amqp.Reply{
			SessionID: event.SessionID,
			Kind:      amqp.ReplyReceipt,
			Expense:   amqp.NewExpensePayload(result.Expense),
		}, nil

	case amqp.EventCancel:
		_, err := w.conversations.OnConfirmation(ctx, event.SessionID, conversation.Cancel())
		if err != nil {
			return errorReply(event.SessionID, err), nil
		}
		return &amqp.Reply{
			SessionID: event.SessionID,
			Kind:      amqp.ReplyCancelled,
		}, nil

	default:
		// ConsumeEvents validates kinds; an unknown one here is a bug in
		// the bridge, not the frontend.
		return errorReply(event.SessionID, fmt.Errorf("unhandled event kind %q", event.Kind)), nil
	}
}

func errorReply(sessionID string, err error) *amqp.Reply {
	slog.Debug("event answered with error reply", "session_id", sessionID, "error", err)

	message := err.Error()
	if errors.Is(err, common.ErrSessionBusy) {
		message = "another event for this session is still being processed; try again shortly"
	}
	return &amqp.Reply{
		SessionID: sessionID,
		Kind:      amqp.ReplyError,
		Error:     message,
	}
}
