package job

import (
	"context"
	"log/slog"
)

type config struct {
	registry   *registry
	queues     map[string]int
	schedules  []schedule
	logger     *slog.Logger
	maxWorkers int
}

type schedule struct {
	name    string
	expr    string
	handler func(context.Context) error
}

func newConfig() *config {
	return &config{
		registry: newRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task. The payload type is inferred from the task's
// Handle signature.
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.add(task.Name(), &typedTask[P, T]{task: task})
	}
}

// WithScheduledTask registers a periodic task. Schedule must return a
// five-field cron expression (minute hour day month weekday).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, schedule{
			name:    task.Name(),
			expr:    task.Schedule(),
			handler: task.Handle,
		})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers caps concurrency on the default queue. Defaults to 100.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
