// Package redis provides a Redis client constructor with retry logic plus
// health check and shutdown hooks for the engine's caching layer.
package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option configures a Redis connection.
type Option func(*options)

type options struct {
	poolSize      int
	minIdleConns  int
	retryAttempts int
	retryInterval time.Duration
	dialTimeout   time.Duration
}

// WithPoolSize sets the maximum number of pooled connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithMinIdleConns sets the minimum number of idle connections. Default: 5.
func WithMinIdleConns(n int) Option {
	return func(o *options) { o.minIdleConns = n }
}

// WithRetry configures connection retry behavior.
// Default: 3 attempts with a 5 second base interval and linear backoff.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithDialTimeout sets the timeout for establishing new connections. Default: 5s.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// Open creates a Redis client from a redis:// or rediss:// URL and verifies
// connectivity with a ping before returning.
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o := &options{
		poolSize:      10,
		minIdleConns:  5,
		retryAttempts: 3,
		retryInterval: 5 * time.Second,
		dialTimeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.MinIdleConns = o.minIdleConns
	redisOpts.DialTimeout = o.dialTimeout

	attempts := max(o.retryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}

	return nil, ErrConnectionFailed
}

// Healthcheck returns a probe validating Redis connectivity, compatible with
// health endpoints expecting func(context.Context) error.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that closes the Redis client.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
