package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"agora/internal/observability"
)

// EventFeedHandler returns the WebSocket handler for GET /api/ws/events.
// Each connected client receives every committed ledger event as a JSON
// message, in commit order. Clients are write-only consumers; anything they
// send is discarded by the read pump.
func (s *Server) EventFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(conn)
		if err != nil {
			observability.Logger.Warn("event feed connection rejected", "error", err)
			_ = conn.Close()
			return
		}
		observability.EventFeedConnections.Inc()
		defer observability.EventFeedConnections.Dec()

		go client.WritePump()
		client.ReadPump() // blocks until the client goes away
	})
}
