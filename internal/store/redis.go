package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// redisAPI is the subset of *goredis.Client used by RedisStore.
type redisAPI interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// RedisStore keeps the document under a single key with no expiry.
type RedisStore struct {
	rdb redisAPI
	key string
}

func NewRedisStore(rdb redisAPI, key string) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("store: redis client must not be nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("store: document key must not be empty")
	}
	return &RedisStore{rdb: rdb, key: "doc:" + key}, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.key)
		}
		return nil, fmt.Errorf("store: redis get %s: %w", s.key, err)
	}
	return b, nil
}

func (s *RedisStore) Save(ctx context.Context, doc []byte) error {
	if err := s.rdb.Set(ctx, s.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("store: redis set %s: %w", s.key, err)
	}
	return nil
}
