package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time // zero means never expires
}

func (e memoryEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a map-backed cache with TTL expiration. A background janitor
// removes expired entries so long-lived processes do not accumulate garbage.
type Memory[V any] struct {
	mu     sync.Mutex
	items  map[string]memoryEntry[V]
	opts   *memoryOptions
	done   chan struct{}
	closed bool
}

// MemoryOption configures the in-memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
}

// WithDefaultTTL sets the TTL applied when Set is called with zero.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often expired entries are swept.
// Default: 1 minute. Zero disables the janitor.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanupInterval = d }
}

// NewMemory creates a new in-memory cache. Call Close to stop the janitor.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := &memoryOptions{
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items: make(map[string]memoryEntry[V]),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || e.expired(time.Now()) {
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.items[key] = memoryEntry[V]{value: value, expiresAt: expiresAt}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Close stops the janitor. Idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, e := range m.items {
		if e.expired(now) {
			delete(m.items, key)
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
