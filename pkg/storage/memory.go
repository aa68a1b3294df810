package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Storage for tests, examples, and local
// development. Objects live in a map; URLs are stable fake URLs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	baseURL string
}

type memObject struct {
	data        []byte
	contentType string
	acl         ACL
	storedAt    time.Time
}

// MemoryOption configures the in-memory storage.
type MemoryOption func(*Memory)

// WithBaseURL sets the prefix URL returns. Defaults to "memory://".
func WithBaseURL(u string) MemoryOption {
	return func(m *Memory) {
		if u != "" {
			m.baseURL = strings.TrimSuffix(u, "/") + "/"
		}
	}
}

// NewMemory creates an empty in-memory storage.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		objects: make(map[string]memObject),
		baseURL: "memory://",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put stores the object, running the same MIME detection, validation, and
// key generation as the S3 backend.
func (m *Memory) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := &putOptions{acl: ACLPrivate}
	for _, opt := range opts {
		opt(o)
	}

	contentType := o.contentType
	detected, body, err := DetectMIME(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read input: %w", err)
	}
	if contentType == "" {
		contentType = detected
	}

	if err := Validate(size, contentType, o.rules...); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("storage: read input: %w", err)
	}

	key := o.key
	if key == "" {
		key = newObjectKey(o.prefix, contentType)
	}

	m.mu.Lock()
	m.objects[key] = memObject{
		data:        data,
		contentType: contentType,
		acl:         o.acl,
		storedAt:    time.Now().UTC(),
	}
	m.mu.Unlock()

	return &FileInfo{Key: key, ContentType: contentType, ACL: o.acl, Size: size}, nil
}

// Get retrieves an object, or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete removes an object; deleting a missing key is not an error, to
// match S3 semantics.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// List returns all objects under the prefix, sorted by key.
func (m *Memory) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []Object
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, Object{Key: key, LastModified: obj.storedAt})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// URL returns a deterministic fake URL for the key.
func (m *Memory) URL(_ context.Context, key string, _ ...URLOption) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return m.baseURL + key, nil
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ Storage = (*Memory)(nil)
