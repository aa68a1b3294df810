package trellis

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/attachment"
	"github.com/trelliskit/trellis/pkg/job"
	"github.com/trelliskit/trellis/pkg/storage"
)

// newLazyPool parses a config without dialing; connections are lazy.
func newLazyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(t.Context(), "postgres://trellis@localhost:5432/trellis_test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type recordingEnqueuer struct {
	names    []string
	payloads []any
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	r.names = append(r.names, name)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestEnqueueTaskForwardsToJobs(t *testing.T) {
	t.Parallel()

	rec := &recordingEnqueuer{}
	e, err := New(
		WithPool(newLazyPool(t)),
		WithStorage(storage.NewMemory()),
		WithJobs(rec),
	)
	require.NoError(t, err)

	payload := attachment.ThumbnailPayload{AttachmentID: "a1"}
	require.NoError(t, e.enqueueTask(t.Context(), attachment.TaskThumbnails, payload))

	require.Equal(t, []string{attachment.TaskThumbnails}, rec.names)
	require.Equal(t, []any{payload}, rec.payloads)
}

func TestEnqueueTaskWithoutJobsIsNoop(t *testing.T) {
	t.Parallel()

	e, err := New(
		WithPool(newLazyPool(t)),
		WithStorage(storage.NewMemory()),
	)
	require.NoError(t, err)

	require.NoError(t, e.enqueueTask(t.Context(), attachment.TaskThumbnails,
		attachment.ThumbnailPayload{AttachmentID: "a1"}))
}
