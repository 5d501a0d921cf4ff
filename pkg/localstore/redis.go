package localstore

import (
	"context"
	"time"

	"github.com/angelmondragon/webmarket/pkg/redis"
)

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LocalStoreKey(namespace, key string) string
	Close() error
}

// Redis keeps entries in redis so several storefront processes can share a cart.
type Redis struct {
	client    redisBackend
	namespace string
}

func NewRedis(client redisBackend, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.LocalStoreKey(r.namespace, key))
	if redis.IsNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Set writes without expiry; local entries live until deleted.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.LocalStoreKey(r.namespace, key), string(value), 0)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.LocalStoreKey(r.namespace, key))
}

func (r *Redis) Close() error {
	return r.client.Close()
}
