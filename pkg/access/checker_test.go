package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/cache"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

func TestGrantChecker_Allowed(t *testing.T) {
	t.Parallel()

	reg := access.NewRegistry()
	require.NoError(t, reg.Register("read"))
	require.NoError(t, reg.Register("write"))
	require.NoError(t, reg.Register("edit", "read", "write"))

	source := access.GrantSourceFunc(func(_ context.Context, actor, _ fingerprint.Fingerprint) ([]access.Permission, error) {
		if actor == "User/editor" {
			return []access.Permission{"edit"}, nil
		}
		return nil, nil
	})

	checker := access.NewGrantChecker(source, access.WithRegistry(reg))

	ok, err := checker.Allowed(t.Context(), "User/editor", "read", "Story/1")
	require.NoError(t, err)
	require.True(t, ok, "edit grants read transitively")

	ok, err = checker.Allowed(t.Context(), "User/stranger", "read", "Story/1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGrantChecker_CachesExpandedGrants(t *testing.T) {
	t.Parallel()

	reg := access.NewRegistry()
	require.NoError(t, reg.Register("read"))

	var calls int
	source := access.GrantSourceFunc(func(context.Context, fingerprint.Fingerprint, fingerprint.Fingerprint) ([]access.Permission, error) {
		calls++
		return []access.Permission{"read"}, nil
	})

	c := cache.NewMemory[[]access.Permission]()
	defer c.Close()

	checker := access.NewGrantChecker(source,
		access.WithRegistry(reg),
		access.WithCache(c, time.Minute),
	)

	for range 3 {
		ok, err := checker.Allowed(t.Context(), "User/1", "read", "Story/1")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 1, calls, "grant source consulted once per actor/asset pair")

	// Invalidation forces a fresh resolve.
	require.NoError(t, checker.Invalidate(t.Context(), "User/1", "Story/1"))
	_, err := checker.Allowed(t.Context(), "User/1", "read", "Story/1")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestAllowAllDenyAll(t *testing.T) {
	t.Parallel()

	ok, err := access.AllowAll().Allowed(t.Context(), "User/1", "read", "Story/1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = access.DenyAll().Allowed(t.Context(), "User/1", "read", "Story/1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestActorContext(t *testing.T) {
	t.Parallel()

	_, ok := access.ActorFromContext(t.Context())
	require.False(t, ok)

	ctx := access.WithActor(t.Context(), "User/42")
	actor, ok := access.ActorFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, fingerprint.Fingerprint("User/42"), actor)
}
