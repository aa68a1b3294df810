package attachment_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/attachment"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

func TestListOptionsSQL(t *testing.T) {
	t.Parallel()

	t.Run("attachable with default order", func(t *testing.T) {
		t.Parallel()
		opts := attachment.ListOptions{Attachable: "Story/1"}
		sql, args := opts.SQL(1)
		require.Equal(t, " WHERE attachable = $1 ORDER BY created_at ASC", sql)
		require.Equal(t, []any{"Story/1"}, args)
	})

	t.Run("type globs expand to LIKE", func(t *testing.T) {
		t.Parallel()
		opts := attachment.ListOptions{
			Attachable: "Story/1",
			OnlyTypes:  []string{"image/*", "application/pdf"},
		}
		sql, args := opts.SQL(1)
		require.Contains(t, sql, "(content_type LIKE $2 OR content_type = $3)")
		require.Equal(t, []any{"Story/1", "image/%", "application/pdf"}, args)
	})

	t.Run("except types negated", func(t *testing.T) {
		t.Parallel()
		opts := attachment.ListOptions{ExceptTypes: []string{"video/*"}}
		sql, args := opts.SQL(1)
		require.Contains(t, sql, "NOT (content_type LIKE $1)")
		require.Equal(t, []any{"video/%"}, args)
	})

	t.Run("size ordering allowed", func(t *testing.T) {
		t.Parallel()
		opts := attachment.ListOptions{OrderBy: "size", Desc: true}
		sql, _ := opts.SQL(1)
		require.Contains(t, sql, "ORDER BY size DESC")
	})

	t.Run("unknown order dropped", func(t *testing.T) {
		t.Parallel()
		opts := attachment.ListOptions{OrderBy: "key"}
		sql, _ := opts.SQL(1)
		require.NotContains(t, sql, "ORDER BY key")
	})
}

func TestParseListOptions(t *testing.T) {
	t.Parallel()

	values := url.Values{
		"attachable":   {"Story/1"},
		"only_types":   {"image/*,application/pdf"},
		"except_types": {"image/gif"},
		"only_authors": {"User/1"},
		"order":        {"-size"},
	}

	opts, err := attachment.ParseListOptions(values)
	require.NoError(t, err)
	require.Equal(t, fingerprint.Fingerprint("Story/1"), opts.Attachable)
	require.Equal(t, []string{"image/*", "application/pdf"}, opts.OnlyTypes)
	require.Equal(t, []string{"image/gif"}, opts.ExceptTypes)
	require.Equal(t, []fingerprint.Fingerprint{"User/1"}, opts.OnlyAuthors)
	require.Equal(t, "size", opts.OrderBy)
	require.True(t, opts.Desc)

	_, err = attachment.ParseListOptions(url.Values{"attachable": {"bad"}})
	require.Error(t, err)

	_, err = attachment.ParseListOptions(url.Values{"updated_before": {"not-a-time"}})
	require.Error(t, err)
}
