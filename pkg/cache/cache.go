// Package cache provides a generic key-value cache with TTL support and
// in-memory and Redis backends. The engine uses it to memoize expanded
// permission grant sets and other small derived values.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache.
//
// TTL semantics for Set: positive expires after the duration, zero uses the
// backend's default TTL, negative never expires.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns ErrNotFound for missing or
	// expired keys.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Marshaler serializes values for backends that store bytes (Redis).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var flight singleflight.Group

type computed[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key, computing and storing it with fn
// on a miss. Concurrent misses for the same key are collapsed into a single
// call to fn.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := flight.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return computed[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(computed[V])

	// Storing is best-effort; a failed Set only costs a recompute later.
	_ = c.Set(ctx, key, r.val, r.ttl)

	return r.val, nil
}
