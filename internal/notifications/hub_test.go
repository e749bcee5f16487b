package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn satisfies wsConn without a network connection.
type fakeConn struct{}

func (fakeConn) WriteMessage(int, []byte) error       { return nil }
func (fakeConn) ReadMessage() (int, []byte, error)    { return 0, nil, nil }
func (fakeConn) SetReadLimit(int64)                   {}
func (fakeConn) SetReadDeadline(time.Time) error      { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error     { return nil }
func (fakeConn) SetPongHandler(func(string) error)    {}
func (fakeConn) Close() error                         { return nil }

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	first, err := hub.Register(fakeConn{})
	require.NoError(t, err)
	second, err := hub.Register(fakeConn{})
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast("hello")

	assert.Equal(t, "hello", string(<-first.Send))
	assert.Equal(t, "hello", string(<-second.Send))
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(fakeConn{})
	require.NoError(t, err)
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice must not panic on the closed channel.
	hub.UnregisterClient(client)
}

func TestHubDropsStalledClients(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(fakeConn{})
	require.NoError(t, err)

	// Fill the send buffer without draining it.
	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("x")
	}
	hub.Broadcast("overflow")

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()

	_, err := hub.Register(fakeConn{})
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ClientCount())

	_, err = hub.Register(fakeConn{})
	assert.Error(t, err)
}

func TestSinkPublishesThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartSubscriber(ctx, func(payload string) {
		received <- payload
	}))

	sink := NewSink(notifier, nil, nil)
	sink.Publish(ctx, &models.Event{Seq: 7, Kind: models.EventPostLiked, Actor: "bob", PostID: 3})

	select {
	case payload := <-received:
		var ev models.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, uint64(7), ev.Seq)
		assert.Equal(t, models.EventPostLiked, ev.Kind)
		assert.Equal(t, "bob", ev.Actor)
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived through pub/sub")
	}
}

func TestSinkFallsBackToDirectBroadcast(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(fakeConn{})
	require.NoError(t, err)

	sink := NewSink(NewNotifier(nil), hub, nil)
	sink.Publish(context.Background(), &models.Event{Seq: 1, Kind: models.EventFollowed, Actor: "alice"})

	var ev models.Event
	require.NoError(t, json.Unmarshal(<-client.Send, &ev))
	assert.Equal(t, models.EventFollowed, ev.Kind)
}
