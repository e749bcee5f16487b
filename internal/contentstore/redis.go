package contentstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "content:"

// redisStore implements Store on a Redis instance.
type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a content store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) Store(ctx context.Context, data []byte) (string, error) {
	ref := Ref(data)
	// Content is immutable under its reference; re-storing is a no-op write.
	if err := s.rdb.Set(ctx, keyPrefix+ref, data, 0).Err(); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *redisStore) Retrieve(ctx context.Context, contentRef string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+contentRef).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
