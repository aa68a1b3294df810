package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

const (
	defaultMaxWorkers = 100
	defaultQueue      = river.QueueDefault
)

// Manager enqueues and processes background jobs. It embeds Enqueuer, so
// jobs can be inserted before Start is called.
type Manager struct {
	*Enqueuer
	registry *registry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates a job manager on the pool. The River client exists
// immediately; call Start to begin processing.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}

	queues := map[string]river.QueueConfig{
		defaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	var periodic []*river.PeriodicJob
	for _, sched := range cfg.schedules {
		cronSchedule, err := parseCron(sched.expr)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.expr, err)
		}

		name := sched.name
		periodic = append(periodic, river.NewPeriodicJob(
			cronSchedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
		cfg.registry.add(name, &cronTask{handler: sched.handler})
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{
		registry: cfg.registry,
		logger:   cfg.logger,
	})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{pool: pool, client: client, logger: cfg.logger},
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.Info("job manager started", slog.Int("tasks", len(m.registry.names())))
	return nil
}

// Stop shuts down the manager, waiting for running jobs to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// Enqueue inserts a job after verifying the task is registered here,
// unlike the bare Enqueuer which defers validation to the worker.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.lookup(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx inserts a job inside the caller's transaction after verifying
// the task is registered.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.lookup(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// Healthcheck reports whether the manager is started and its pool reachable.
func (m *Manager) Healthcheck(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
	}
	if err := m.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// taskArgs is the single River job arguments type all tasks share: a task
// name plus a JSON payload, dispatched through the registry.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "trellis:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	exec, ok := w.registry.lookup(job.Args.TaskName)
	if !ok || exec == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	w.logger.DebugContext(ctx, "executing task",
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	if err := exec.Execute(ctx, job.Args.Payload); err != nil {
		w.logger.ErrorContext(ctx, "task failed",
			slog.String("task", job.Args.TaskName),
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCron(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
