package list_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/list"
)

func fps(values ...fingerprint.Fingerprint) []fingerprint.Fingerprint {
	return values
}

func TestItemOptionsSQL(t *testing.T) {
	t.Parallel()

	t.Run("always orders by sort order", func(t *testing.T) {
		t.Parallel()
		frag, args := list.ItemOptions{}.SQL("l1", 1)
		require.Equal(t, " WHERE list_id = $1 ORDER BY sort_order ASC", frag)
		require.Equal(t, []any{"l1"}, args)
	})

	t.Run("filters state with pagination", func(t *testing.T) {
		t.Parallel()
		frag, args := list.ItemOptions{
			State:  list.StateSelected,
			Limit:  10,
			Offset: 20,
		}.SQL("l1", 1)
		require.Equal(t,
			" WHERE list_id = $1 AND state = $2 ORDER BY sort_order ASC LIMIT $3 OFFSET $4",
			frag)
		require.Equal(t, []any{"l1", "selected", 10, 20}, args)
	})
}

func TestContainingOptionsSQL(t *testing.T) {
	t.Parallel()

	frag, args := list.ContainingOptions{
		OnlyOwners:   fps("User/1", "User/2"),
		ExceptOwners: fps("User/2"),
	}.SQL("Story/9", 1)
	require.Equal(t,
		" WHERE i.object = $1 AND l.owner IN ($2) ORDER BY l.created_at ASC",
		frag)
	require.Equal(t, []any{"Story/9", "User/1"}, args)
}

func TestParseItemOptions(t *testing.T) {
	t.Parallel()

	opts, err := list.ParseItemOptions(url.Values{"state": {"deselected"}})
	require.NoError(t, err)
	require.Equal(t, list.StateDeselected, opts.State)

	_, err = list.ParseItemOptions(url.Values{"state": {"archived"}})
	require.ErrorIs(t, err, list.ErrInvalidState)
}

func TestParseContainingOptions(t *testing.T) {
	t.Parallel()

	opts, err := list.ParseContainingOptions(url.Values{
		"only_owners":   {"User/1,User/2"},
		"except_owners": {"User/3"},
	})
	require.NoError(t, err)
	require.Len(t, opts.OnlyOwners, 2)
	require.Len(t, opts.ExceptOwners, 1)

	_, err = list.ParseContainingOptions(url.Values{"only_owners": {"garbage"}})
	require.Error(t, err)
}
