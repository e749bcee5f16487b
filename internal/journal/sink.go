package journal

import (
	"context"
	"log/slog"

	"agora/internal/ledger"
	"agora/internal/models"
)

// Sink writes committed ledger events to the journal and then forwards them
// to any downstream sinks (redis/websocket fan-out). It runs inside the
// ledger's commit path, so the journal write happens in commit order. An
// append failure is logged, not propagated: the ledger mutation has already
// committed and must not be unwound by an observer.
type Sink struct {
	store  Store
	logger *slog.Logger
	next   []ledger.EventSink
}

// NewSink creates a journal sink. next sinks receive the event after it has
// been assigned its journal sequence number.
func NewSink(store Store, logger *slog.Logger, next ...ledger.EventSink) *Sink {
	return &Sink{store: store, logger: logger, next: next}
}

// Publish implements ledger.EventSink.
func (s *Sink) Publish(ctx context.Context, ev *models.Event) {
	if err := s.store.Append(ctx, ev); err != nil && s.logger != nil {
		s.logger.Error("journal append failed",
			"kind", ev.Kind,
			"actor", ev.Actor,
			"error", err)
	}
	for _, sink := range s.next {
		sink.Publish(ctx, ev)
	}
}

// Replay feeds the full journal back into fresh ledgers, splitting events
// between the social and governance state machines.
func Replay(ctx context.Context, store Store, social *ledger.SocialLedger, governance *ledger.GovernanceLedger) error {
	return store.ForEach(ctx, func(ev *models.Event) error {
		if ledger.IsSocialEvent(ev.Kind) {
			return social.Restore(ev)
		}
		return governance.Restore(ev)
	})
}
