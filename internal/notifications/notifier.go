// Package notifications fans committed ledger events out to subscribers:
// into Redis pub/sub when available, and onto connected websocket clients.
// The event feed is the only external mechanism for discovering historical
// activity such as comments on a post, so delivery here mirrors the journal's
// commit order.
package notifications

import (
	"context"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// eventsChannel is the Redis pub/sub channel carrying the ledger event feed.
const eventsChannel = "ledger:events"

// Notifier publishes ledger events into Redis pub/sub. All methods are no-ops
// when constructed without a Redis client, so callers never need to branch.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishEvent sends a serialized event to the ledger event channel.
func (n *Notifier) PublishEvent(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, eventsChannel, payload).Err()
}

// StartSubscriber subscribes to the ledger event channel and calls onMessage
// for each payload until ctx is canceled. A panicking handler is logged and
// does not take the subscriber down.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
