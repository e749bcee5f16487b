package contentstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(rdb),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			blob := []byte(`{"username":"alice","picture":"avatar.png"}`)

			ref, err := store.Store(ctx, blob)
			require.NoError(t, err)
			assert.Len(t, ref, 64)

			got, err := store.Retrieve(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, blob, got)
		})
	}
}

func TestStoreIsIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			blob := []byte("same bytes")

			first, err := store.Store(ctx, blob)
			require.NoError(t, err)
			second, err := store.Store(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestRetrieveUnknownRef(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Retrieve(ctx, Ref([]byte("never stored")))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRefIsContentAddressed(t *testing.T) {
	assert.Equal(t, Ref([]byte("a")), Ref([]byte("a")))
	assert.NotEqual(t, Ref([]byte("a")), Ref([]byte("b")))
}
