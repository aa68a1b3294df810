package actorgroup_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/actorgroup"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

func fps(values ...fingerprint.Fingerprint) []fingerprint.Fingerprint { return values }

func TestMemberOptionsSQL(t *testing.T) {
	t.Parallel()

	t.Run("bare", func(t *testing.T) {
		t.Parallel()
		sql, args := actorgroup.MemberOptions{}.SQL("g1", 1)
		require.Equal(t, " WHERE group_id = $1 ORDER BY created_at ASC", sql)
		require.Equal(t, []any{"g1"}, args)
	})

	t.Run("only minus except with paging", func(t *testing.T) {
		t.Parallel()
		opts := actorgroup.MemberOptions{
			OnlyActors:   fps("User/1", "User/2"),
			ExceptActors: fps("User/2"),
			Limit:        10,
			Offset:       20,
		}
		sql, args := opts.SQL("g1", 1)
		require.Equal(t,
			" WHERE group_id = $1 AND actor IN ($2) ORDER BY created_at ASC LIMIT $3 OFFSET $4",
			sql)
		require.Equal(t, []any{"g1", "User/1", 10, 20}, args)
	})

	t.Run("except exhausts only", func(t *testing.T) {
		t.Parallel()
		opts := actorgroup.MemberOptions{
			OnlyActors:   fps("User/1"),
			ExceptActors: fps("User/1"),
		}
		sql, _ := opts.SQL("g1", 1)
		require.Contains(t, sql, " WHERE FALSE")
	})
}

func TestGroupOptionsSQL(t *testing.T) {
	t.Parallel()

	opts := actorgroup.GroupOptions{ExceptOwners: fps("User/9")}
	sql, args := opts.SQL("User/1", 1)
	require.Equal(t,
		" WHERE m.actor = $1 AND g.owner NOT IN ($2) ORDER BY g.created_at ASC",
		sql)
	require.Equal(t, []any{"User/1", "User/9"}, args)
}

func TestParseMemberOptions(t *testing.T) {
	t.Parallel()

	t.Run("csv values", func(t *testing.T) {
		t.Parallel()
		opts, err := actorgroup.ParseMemberOptions(url.Values{
			"only_actors":   {"User/1,User/2"},
			"except_actors": {"User/3"},
		})
		require.NoError(t, err)
		require.Equal(t, fps("User/1", "User/2"), opts.OnlyActors)
		require.Equal(t, fps("User/3"), opts.ExceptActors)
	})

	t.Run("invalid fingerprint", func(t *testing.T) {
		t.Parallel()
		_, err := actorgroup.ParseMemberOptions(url.Values{"only_actors": {"nope"}})
		require.Error(t, err)
	})
}
