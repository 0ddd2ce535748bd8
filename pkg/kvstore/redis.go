package kvstore

import (
	"context"
	"errors"
	"time"

	redisclient "github.com/davemorenodev/loungelab-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

// RedisStore adapts the shared Redis client to the Store surface. It is the
// primary durable slot.
type RedisStore struct {
	client *redisclient.Client
}

func NewRedisStore(client *redisclient.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.client.GuestCartKey(key))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.client.GuestCartKey(key), value, ttl)
}

func (r *RedisStore) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.GuestCartKey(key))
}
