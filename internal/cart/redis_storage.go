package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/fest-cart/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(session string) string
	Ping(ctx context.Context) error
}

// RedisStorage keeps each snapshot as a string value under fc:cart:<session>.
type RedisStorage struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisStorage builds redis-backed storage. A positive ttl is refreshed on every save.
func NewRedisStorage(client redisStore, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client required for cart storage")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStorage{client: client, ttl: ttl}, nil
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.client.CartKey(key))
	if err != nil {
		if errors.Is(err, pkgredis.ErrNil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return []byte(value), nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.client.CartKey(key), string(data), s.ttl); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
