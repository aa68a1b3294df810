package trellis

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/middlewares"
	"github.com/trelliskit/trellis/migrations"
	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/actorgroup"
	"github.com/trelliskit/trellis/pkg/attachment"
	"github.com/trelliskit/trellis/pkg/cache"
	"github.com/trelliskit/trellis/pkg/comment"
	"github.com/trelliskit/trellis/pkg/db"
	"github.com/trelliskit/trellis/pkg/health"
	"github.com/trelliskit/trellis/pkg/job"
	"github.com/trelliskit/trellis/pkg/list"
	"github.com/trelliskit/trellis/pkg/notify"
	"github.com/trelliskit/trellis/pkg/storage"
)

var (
	// ErrPoolRequired is returned when New is called without a pgx pool.
	ErrPoolRequired = errors.New("trellis: pgx pool is required")

	// ErrStorageRequired is returned when New is called without an object
	// store.
	ErrStorageRequired = errors.New("trellis: storage is required")
)

// migrationsTable keeps the engine's goose bookkeeping away from the
// host's own migrations.
const migrationsTable = "trellis_schema_migrations"

// JobEnqueuer inserts background jobs. Both *job.Manager and
// *job.Enqueuer satisfy it.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// Engine wires the resource services and handlers around host-supplied
// infrastructure. Construct with New, mount with Mount.
type Engine struct {
	pool     *pgxpool.Pool
	store    storage.Storage
	checker  access.Checker
	log      *slog.Logger
	jobs     JobEnqueuer
	notifier *notify.Notifier
	resolver middlewares.ActorResolver

	grantSource access.GrantSource
	grantCache  cache.Cache[[]access.Permission]
	grantTTL    time.Duration

	maxUploadSize int64
	allowedTypes  []string
	variantWidths map[string]int
	sweepSchedule string

	comments    *comment.Service
	attachments *attachment.Service
	lists       *list.Service
	groups      *actorgroup.Service

	commentRepo    *comment.PgRepository
	attachmentRepo *attachment.PgRepository
}

// New creates an engine. A pool and a storage backend are required; every
// other dependency has a safe default (deny-all checker, silent logger,
// no background jobs, no notifications).
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		log:           slog.New(slog.DiscardHandler),
		resolver:      middlewares.HeaderActorResolver(middlewares.DefaultActorHeader),
		variantWidths: attachment.DefaultVariantWidths,
		sweepSchedule: attachment.DefaultSweepSchedule,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.pool == nil {
		return nil, ErrPoolRequired
	}
	if e.store == nil {
		return nil, ErrStorageRequired
	}

	if e.checker == nil && e.grantSource != nil {
		var gcOpts []access.GrantCheckerOption
		if e.grantCache != nil {
			gcOpts = append(gcOpts, access.WithCache(e.grantCache, e.grantTTL))
		}
		e.checker = access.NewGrantChecker(e.grantSource, gcOpts...)
	}
	if e.checker == nil {
		e.checker = access.DenyAll()
	}

	e.commentRepo = comment.NewPgRepository(e.pool)
	e.attachmentRepo = attachment.NewPgRepository(e.pool)

	commentOpts := []comment.ServiceOption{comment.WithLogger(e.log)}
	if e.jobs != nil && e.notifier != nil {
		commentOpts = append(commentOpts, comment.WithNotify(e.enqueueNotice))
	}
	e.comments = comment.NewService(e.commentRepo, e.checker, commentOpts...)

	attachmentOpts := []attachment.ServiceOption{
		attachment.WithLogger(e.log),
		attachment.WithEnqueue(e.enqueueTask),
	}
	if e.maxUploadSize > 0 {
		attachmentOpts = append(attachmentOpts, attachment.WithMaxUploadSize(e.maxUploadSize))
	}
	if len(e.allowedTypes) > 0 {
		attachmentOpts = append(attachmentOpts, attachment.WithAllowedTypes(e.allowedTypes...))
	}
	e.attachments = attachment.NewService(e.attachmentRepo, e.store, e.checker, attachmentOpts...)

	e.lists = list.NewService(list.NewPgRepository(e.pool), e.checker, list.WithLogger(e.log))
	e.groups = actorgroup.NewService(actorgroup.NewPgRepository(e.pool), e.checker, actorgroup.WithLogger(e.log))

	return e, nil
}

// Mount wires the resource handlers and engine middleware onto r. The
// host owns authentication; the actor resolver only reads an
// already-established identity from the request.
func (e *Engine) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequestID())
		r.Use(middlewares.Recover(e.log))
		r.Use(middlewares.Actor(e.resolver))

		comment.NewHandler(e.comments, e.log).Routes(r)
		attachment.NewHandler(e.attachments, e.log).Routes(r)
		list.NewHandler(e.lists, e.log).Routes(r)
		actorgroup.NewHandler(e.groups, e.log).Routes(r)
	})
}

// Migrate applies the engine's embedded schema migrations.
func (e *Engine) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, e.pool, migrations.FS, migrationsTable, e.log)
}

// Tasks returns the job options that register the engine's background
// tasks: thumbnail generation, the nightly orphaned-blob sweep, and (when
// a notifier is configured) comment notification delivery. Pass them to
// job.NewManager alongside the host's own tasks.
func (e *Engine) Tasks() []job.Option {
	opts := []job.Option{
		job.WithTask(attachment.NewThumbnailTask(e.attachmentRepo, e.store, e.variantWidths, e.log)),
		job.WithScheduledTask(attachment.NewSweepTask(e.attachmentRepo, e.store, e.sweepSchedule, e.log)),
	}
	if e.notifier != nil {
		opts = append(opts, job.WithTask(notify.NewNoticeTask(e.commentRepo, e.notifier, e.log)))
	}
	return opts
}

// Comments exposes the comment service for host code that bypasses HTTP.
func (e *Engine) Comments() *comment.Service { return e.comments }

// Attachments exposes the attachment service.
func (e *Engine) Attachments() *attachment.Service { return e.attachments }

// Lists exposes the list service.
func (e *Engine) Lists() *list.Service { return e.lists }

// Groups exposes the actor group service.
func (e *Engine) Groups() *actorgroup.Service { return e.groups }

// Healthcheck pings the database.
func (e *Engine) Healthcheck(ctx context.Context) error {
	return db.Healthcheck(e.pool)(ctx)
}

// ReadyHandler returns a readiness probe covering the engine's database.
// Hosts with more dependencies can build their own with pkg/health.
func (e *Engine) ReadyHandler() http.HandlerFunc {
	return health.Ready(health.Checks{
		"postgres": db.Healthcheck(e.pool),
	}, health.WithLogger(e.log))
}

// enqueueTask hands background work to the host's enqueuer. Without one,
// tasks are dropped: uploads still succeed, they just never get variants.
func (e *Engine) enqueueTask(ctx context.Context, task string, payload any) error {
	if e.jobs == nil {
		e.log.DebugContext(ctx, "no job enqueuer configured, dropping task",
			slog.String("task", task))
		return nil
	}
	return e.jobs.Enqueue(ctx, task, payload)
}

// enqueueNotice schedules notification delivery after a comment is
// created. Enqueue failures must not fail the create, so they only log.
func (e *Engine) enqueueNotice(ctx context.Context, c *comment.Comment) {
	err := e.jobs.Enqueue(ctx, notify.TaskCommentNotice, notify.NoticePayload{CommentID: c.ID})
	if err != nil {
		e.log.ErrorContext(ctx, "enqueue comment notice",
			slog.String("comment_id", c.ID),
			slog.Any("error", err),
		)
	}
}
