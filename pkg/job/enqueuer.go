package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Enqueuer dispatches jobs without processing them. Use it in processes
// that only produce work for separate workers to consume.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures the enqueuer.
type EnqueuerOption func(*enqueuerConfig)

type enqueuerConfig struct {
	logger *slog.Logger
}

// WithEnqueuerLogger sets the logger for the enqueuer.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(c *enqueuerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only River client on the pool.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &enqueuerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{pool: pool, client: client, logger: cfg.logger}, nil
}

// Enqueue inserts a job for workers to process. Task name validation
// happens on the worker side.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	return nil
}

// EnqueueTx inserts a job inside the caller's transaction. The job only
// becomes visible to workers after the transaction commits.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.InsertTx(ctx, tx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue tx: %w", err)
	}
	return nil
}
