package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by Redis. Values are serialized through the
// configured Marshaler (JSON by default).
type Redis[V any] struct {
	client     redis.UniversalClient
	marshaler  Marshaler[V]
	prefix     string
	defaultTTL time.Duration
}

// RedisOption configures the Redis cache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

// WithPrefix namespaces all keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) { o.prefix = prefix }
}

// WithRedisDefaultTTL sets the TTL applied when Set is called with zero.
// Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) { o.defaultTTL = d }
}

// NewRedis creates a Redis-backed cache. Pass a nil Marshaler for JSON.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := &redisOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Redis[V]{
		client:     client,
		marshaler:  m,
		prefix:     o.prefix,
		defaultTTL: o.defaultTTL,
	}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.defaultTTL
	}
	if ttl < 0 {
		ttl = 0 // redis: zero expiration means persist
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
