package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trelliskit/trellis/pkg/storage"
)

// TaskSweep is the job name for orphaned-blob cleanup.
const TaskSweep = "attachment.sweep"

// DefaultSweepSchedule runs the sweep nightly, off peak.
const DefaultSweepSchedule = "0 3 * * *"

// DefaultSweepGrace is how long a stored blob may lack a row before the
// sweep considers it orphaned. Uploads store the blob before inserting the
// row, so a blob younger than the grace window may belong to an upload
// still in flight.
const DefaultSweepGrace = 24 * time.Hour

// SweepTask deletes blobs under the engine prefix whose attachment row no
// longer exists — leftovers from best-effort deletes or crashed uploads.
type SweepTask struct {
	repo     Repository
	store    storage.Storage
	schedule string
	grace    time.Duration
	log      *slog.Logger
}

// SweepOption configures the sweep task.
type SweepOption func(*SweepTask)

// WithSweepGrace overrides how recently modified a keyless blob may be
// before it is deleted.
func WithSweepGrace(d time.Duration) SweepOption {
	return func(t *SweepTask) {
		if d >= 0 {
			t.grace = d
		}
	}
}

// NewSweepTask creates the task. An empty schedule uses the default.
func NewSweepTask(repo Repository, store storage.Storage, schedule string, log *slog.Logger, opts ...SweepOption) *SweepTask {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	t := &SweepTask{
		repo:     repo,
		store:    store,
		schedule: schedule,
		grace:    DefaultSweepGrace,
		log:      log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements the job task contract.
func (t *SweepTask) Name() string { return TaskSweep }

// Schedule implements the scheduled task contract.
func (t *SweepTask) Schedule() string { return t.schedule }

// Handle lists stored objects, subtracts the live set, and deletes the
// rest. Objects modified inside the grace window are kept: the blob of an
// upload in flight exists before its row does. Individual delete failures
// are logged and skipped; the next run retries.
func (t *SweepTask) Handle(ctx context.Context) error {
	objects, err := t.store.List(ctx, StoragePrefix)
	if err != nil {
		return fmt.Errorf("attachment: sweep list: %w", err)
	}
	live, err := t.repo.LiveKeys(ctx)
	if err != nil {
		return fmt.Errorf("attachment: sweep live keys: %w", err)
	}
	cutoff := time.Now().Add(-t.grace)

	var removed int
	for _, obj := range objects {
		if _, ok := live[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := t.store.Delete(ctx, obj.Key); err != nil {
			t.log.WarnContext(ctx, "sweep delete failed",
				slog.String("key", obj.Key), slog.Any("error", err))
			continue
		}
		removed++
	}

	if removed > 0 {
		t.log.InfoContext(ctx, "sweep completed",
			slog.Int("scanned", len(objects)), slog.Int("removed", removed))
	}
	return nil
}
