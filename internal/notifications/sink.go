package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"agora/internal/models"
)

// Sink forwards committed ledger events into the fan-out layer. With Redis
// attached, events go through pub/sub and reach the hub via the subscriber
// (so every replica's hub sees every event); without Redis, the hub is fed
// directly.
type Sink struct {
	notifier *Notifier
	hub      *Hub
	logger   *slog.Logger
}

// NewSink creates a fan-out sink. Either notifier or hub may be nil.
func NewSink(notifier *Notifier, hub *Hub, logger *slog.Logger) *Sink {
	return &Sink{notifier: notifier, hub: hub, logger: logger}
}

// Publish implements ledger.EventSink.
func (s *Sink) Publish(ctx context.Context, ev *models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("event marshal failed", "kind", ev.Kind, "error", err)
		}
		return
	}

	if s.notifier.Enabled() {
		if err := s.notifier.PublishEvent(ctx, string(payload)); err != nil && s.logger != nil {
			s.logger.Error("event publish failed", "kind", ev.Kind, "error", err)
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(string(payload))
	}
}
