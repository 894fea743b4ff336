package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetWithTTL reserves the slot with SET NX so that concurrent callers
// across server processes cannot both claim it.
func (s *RedisStore) SetWithTTL(ctx context.Context, key string, ttl time.Duration) error {
	return s.Client.SetNX(ctx, key, 1, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
