package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"vigil/pkg/requestcontext"
)

// Publisher hands events to the background worker. Emission is
// fire-and-forget: auditing must never slow down or fail a screening, so a
// full buffer drops the event with a warning instead of blocking the caller.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewPipeline wires a publisher to a worker over a buffered channel.
func NewPipeline(store Store, logger *slog.Logger, buffer int) (*Publisher, *Worker) {
	inbox := make(chan Event, buffer)
	return &Publisher{inbox: inbox, logger: logger}, NewWorker(store, inbox, logger)
}

// Emit enqueues an event, filling in ID, timestamp, and request correlation
// from context when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"event_id", event.ID,
		)
	}
}
