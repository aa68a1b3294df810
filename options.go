package trellis

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/middlewares"
	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/cache"
	"github.com/trelliskit/trellis/pkg/notify"
	"github.com/trelliskit/trellis/pkg/storage"
)

// Option configures the engine.
type Option func(*Engine)

// WithPool sets the pgx pool shared by all repositories.
func WithPool(pool *pgxpool.Pool) Option {
	return func(e *Engine) { e.pool = pool }
}

// WithStorage sets the object store for attachment blobs.
func WithStorage(store storage.Storage) Option {
	return func(e *Engine) { e.store = store }
}

// WithChecker sets the access checker consulted by every service.
// Takes precedence over WithGrantSource.
func WithChecker(c access.Checker) Option {
	return func(e *Engine) {
		if c != nil {
			e.checker = c
		}
	}
}

// WithGrantSource builds a grant-expanding checker from the host's grant
// storage. Combine with WithCache to memoize expanded grant sets.
func WithGrantSource(src access.GrantSource) Option {
	return func(e *Engine) { e.grantSource = src }
}

// WithCache memoizes expanded grant sets when WithGrantSource is used.
// A zero ttl keeps the checker's default.
func WithCache(c cache.Cache[[]access.Permission], ttl time.Duration) Option {
	return func(e *Engine) {
		e.grantCache = c
		e.grantTTL = ttl
	}
}

// WithJobs enables background work: thumbnail generation for image
// uploads and notification delivery.
func WithJobs(jobs JobEnqueuer) Option {
	return func(e *Engine) { e.jobs = jobs }
}

// WithLogger sets the engine logger. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithNotifier enables comment notification emails. Requires WithJobs;
// delivery runs as a background task.
func WithNotifier(n *notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMaxUploadSize caps attachment uploads in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(e *Engine) { e.maxUploadSize = n }
}

// WithAllowedTypes restricts upload content types. Glob patterns like
// "image/*" are accepted.
func WithAllowedTypes(types ...string) Option {
	return func(e *Engine) { e.allowedTypes = types }
}

// WithActorResolver sets how the acting fingerprint is read from a
// request. Defaults to trusting the X-Actor header, which is only safe
// behind an authenticating gateway.
func WithActorResolver(resolve middlewares.ActorResolver) Option {
	return func(e *Engine) {
		if resolve != nil {
			e.resolver = resolve
		}
	}
}

// WithVariantWidths overrides the thumbnail variants generated for image
// attachments (variant name to pixel width).
func WithVariantWidths(widths map[string]int) Option {
	return func(e *Engine) {
		if len(widths) > 0 {
			e.variantWidths = widths
		}
	}
}

// WithSweepSchedule overrides the cron schedule of the orphaned-blob
// sweep.
func WithSweepSchedule(expr string) Option {
	return func(e *Engine) {
		if expr != "" {
			e.sweepSchedule = expr
		}
	}
}
