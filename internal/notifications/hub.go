package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// Max total connections
	maxTotalConns = 10000
)

// Hub is a websocket hub holding every client subscribed to the event feed.
// The feed is a broadcast: all clients receive all events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a new Hub instance for the event feed.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "event feed hub" }

// Register adds a client for the given connection. Fails when the connection
// limit is reached or the hub is shutting down.
func (h *Hub) Register(conn wsConn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.New("hub is shut down")
	}
	if len(h.clients) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn)
	h.clients[client] = struct{}{}
	return client, nil
}

// UnregisterClient removes a client and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

// Broadcast queues a message for every connected client. Clients whose send
// buffer is full are dropped rather than allowed to stall the feed.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	var stalled []*Client
	for client := range h.clients {
		select {
		case client.Send <- []byte(message):
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.UnregisterClient(client)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects every client and refuses new registrations.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		close(client.Send)
	}

	// Give write pumps a moment to flush close frames.
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}
