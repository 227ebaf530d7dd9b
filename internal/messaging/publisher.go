package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/logger"
)

// Publisher defines the interface for publishing settlement events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a settlement event
	PublishEvent(ctx context.Context, event *Event) error
	// Close closes the connection
	Close()
}

// PublishBestEffort publishes after a commit. Failures are logged and never surfaced:
// the ledger is already the source of truth for what happened.
func PublishBestEffort(ctx context.Context, p Publisher, event *Event) {
	if p == nil || event == nil {
		return
	}
	if err := p.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish settlement event",
			zap.Error(err),
			zap.String("eventID", event.ID),
			zap.String("eventType", string(event.Type)))
	}
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEvent(context.Context, *Event) error { return nil }

func (nopPublisher) Close() {}
