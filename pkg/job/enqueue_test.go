package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildJobArgs(t *testing.T) {
	t.Parallel()

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()
		args, opts, err := buildJobArgs("cleanup", nil)
		require.NoError(t, err)
		require.Equal(t, "cleanup", args.TaskName)
		require.Empty(t, args.Payload)
		require.Equal(t, "trellis:task", args.Kind())
		require.Zero(t, opts.MaxAttempts)
	})

	t.Run("payload marshaled", func(t *testing.T) {
		t.Parallel()
		args, _, err := buildJobArgs("echo", map[string]string{"value": "hi"})
		require.NoError(t, err)
		require.JSONEq(t, `{"value":"hi"}`, string(args.Payload))
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()
		_, _, err := buildJobArgs("echo", make(chan int))
		require.Error(t, err)
	})

	t.Run("options applied", func(t *testing.T) {
		t.Parallel()
		at := time.Now().Add(time.Hour)
		args, opts, err := buildJobArgs("echo", nil,
			InQueue("slow"),
			At(at),
			MaxAttempts(3),
			Priority(2),
			Tags("media"),
			UniqueFor(time.Minute),
			UniqueKey("asset-1"),
		)
		require.NoError(t, err)
		require.Equal(t, "slow", opts.Queue)
		require.Equal(t, at, opts.ScheduledAt)
		require.Equal(t, 3, opts.MaxAttempts)
		require.Equal(t, 2, opts.Priority)
		require.Equal(t, []string{"media"}, opts.Tags)
		require.Equal(t, time.Minute, opts.UniqueOpts.ByPeriod)
		require.Equal(t, "asset-1", args.UniqueKey)
	})

	t.Run("unique key ignored without window", func(t *testing.T) {
		t.Parallel()
		args, _, err := buildJobArgs("echo", nil, UniqueKey("asset-1"))
		require.NoError(t, err)
		require.Empty(t, args.UniqueKey)
	})

	t.Run("after schedules in the future", func(t *testing.T) {
		t.Parallel()
		_, opts, err := buildJobArgs("echo", nil, After(time.Minute))
		require.NoError(t, err)
		require.True(t, opts.ScheduledAt.After(time.Now()))
	})
}

func TestParseCron(t *testing.T) {
	t.Parallel()

	sched, err := parseCron("*/5 * * * *")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 10, 2, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 1, 1, 10, 5, 0, 0, time.UTC), sched.Next(base))

	_, err = parseCron("not a schedule")
	require.Error(t, err)
}

func TestNewManagerRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil)
	require.ErrorIs(t, err, ErrPoolRequired)

	_, err = NewEnqueuer(nil)
	require.ErrorIs(t, err, ErrPoolRequired)
}
