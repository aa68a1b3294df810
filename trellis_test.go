package trellis_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis"
	"github.com/trelliskit/trellis/pkg/comment"
	"github.com/trelliskit/trellis/pkg/job"
	"github.com/trelliskit/trellis/pkg/notify"
	"github.com/trelliskit/trellis/pkg/storage"
)

// testPool parses a config without dialing; connections are lazy.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(t.Context(), "postgres://trellis@localhost:5432/trellis_test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(context.Context, string, any, ...job.EnqueueOption) error {
	return nil
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := trellis.New()
	require.ErrorIs(t, err, trellis.ErrPoolRequired)

	_, err = trellis.New(trellis.WithPool(testPool(t)))
	require.ErrorIs(t, err, trellis.ErrStorageRequired)
}

func TestMountRegistersRoutes(t *testing.T) {
	t.Parallel()

	e, err := trellis.New(
		trellis.WithPool(testPool(t)),
		trellis.WithStorage(storage.NewMemory()),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	e.Mount(r)

	var routes []string
	err = chi.Walk(r, func(_, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, route)
		return nil
	})
	require.NoError(t, err)

	require.Contains(t, routes, "/comments/")
	require.Contains(t, routes, "/attachments/{id}/url")
	require.Contains(t, routes, "/lists/{id}/items")
	require.Contains(t, routes, "/groups/{id}/members")
}

func TestTasks(t *testing.T) {
	t.Parallel()

	t.Run("thumbnails and sweep by default", func(t *testing.T) {
		t.Parallel()
		e, err := trellis.New(
			trellis.WithPool(testPool(t)),
			trellis.WithStorage(storage.NewMemory()),
		)
		require.NoError(t, err)
		require.Len(t, e.Tasks(), 2)
	})

	t.Run("notifier adds the notice task", func(t *testing.T) {
		t.Parallel()
		resolve := func(context.Context, *comment.Comment) ([]string, error) { return nil, nil }
		notifier, err := notify.NewNotifier(notify.Config{APIKey: "re_test"}, resolve)
		require.NoError(t, err)

		e, err := trellis.New(
			trellis.WithPool(testPool(t)),
			trellis.WithStorage(storage.NewMemory()),
			trellis.WithJobs(noopEnqueuer{}),
			trellis.WithNotifier(notifier),
		)
		require.NoError(t, err)
		require.Len(t, e.Tasks(), 3)
	})
}
