package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

type enqueueConfig struct {
	queue       string
	scheduledAt *time.Time
	maxAttempts int
	priority    int
	uniqueFor   time.Duration
	uniqueKey   string
	tags        []string
}

// EnqueueOption configures a single enqueued job.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// At delays the job until a specific time.
func At(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = &t }
}

// After delays the job by a duration from now.
func After(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts caps retries for the job.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Priority sets the job priority; lower values run first.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) { c.priority = p }
}

// UniqueFor deduplicates jobs over the given window. Combine with
// UniqueKey to scope deduplication to a caller-chosen key.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueFor = d }
}

// UniqueKey sets the deduplication key used with UniqueFor.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueKey = key }
}

// Tags attaches metadata tags to the job.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) { c.tags = append(c.tags, tags...) }
}

// buildJobArgs converts a task name, payload, and options into River
// insert arguments.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
	}

	args := &taskArgs{
		TaskName: name,
		Payload:  raw,
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{}
	if cfg.queue != "" {
		insertOpts.Queue = cfg.queue
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.maxAttempts > 0 {
		insertOpts.MaxAttempts = cfg.maxAttempts
	}
	if cfg.priority > 0 {
		insertOpts.Priority = cfg.priority
	}
	if len(cfg.tags) > 0 {
		insertOpts.Tags = cfg.tags
	}
	if cfg.uniqueFor > 0 {
		insertOpts.UniqueOpts = river.UniqueOpts{ByPeriod: cfg.uniqueFor}
		if cfg.uniqueKey != "" {
			args.UniqueKey = cfg.uniqueKey
		}
	}

	return args, insertOpts, nil
}
