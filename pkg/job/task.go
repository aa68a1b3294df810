package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// executor is the type-erased form a registered task takes inside the
// registry, so tasks with different payload types share one worker.
type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	mu        sync.RWMutex
	executors map[string]executor
}

func newRegistry() *registry {
	return &registry{executors: make(map[string]executor)}
}

func (r *registry) add(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = e
}

func (r *registry) lookup(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.executors))
}

// typedTask adapts a task with a typed Handle method to the executor
// interface, unmarshaling the raw payload first.
type typedTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (t *typedTask[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return t.task.Handle(ctx, payload)
}

// cronTask adapts a scheduled handler, which takes no payload.
type cronTask struct {
	handler func(context.Context) error
}

func (t *cronTask) Execute(ctx context.Context, _ json.RawMessage) error {
	return t.handler(ctx)
}
