package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/query"
)

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	t.Run("empty builder", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		sql, args := b.Build(1)
		require.Empty(t, sql)
		require.Empty(t, args)
	})

	t.Run("where with renumbered placeholders", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		b.Where("commentable = ?", "Story/1").Where("created_at > ?", since)

		sql, args := b.Build(1)
		require.Equal(t, " WHERE commentable = $1 AND created_at > $2", sql)
		require.Equal(t, []any{"Story/1", since}, args)
	})

	t.Run("start offset shifts placeholders", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.Where("author = ?", "User/1").Limit(10)

		sql, args := b.Build(3)
		require.Equal(t, " WHERE author = $3 LIMIT $4", sql)
		require.Equal(t, []any{"User/1", 10}, args)
	})

	t.Run("order limit offset", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.Order("created_at", true, "created_at", "updated_at").Limit(20).Offset(40)

		sql, args := b.Build(1)
		require.Equal(t, " ORDER BY created_at DESC LIMIT $1 OFFSET $2", sql)
		require.Equal(t, []any{20, 40}, args)
	})

	t.Run("unknown order column dropped", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.Order("1; DROP TABLE comments", false, "created_at")

		sql, _ := b.Build(1)
		require.Empty(t, sql)
	})
}

func TestBuilderOnlyExcept(t *testing.T) {
	t.Parallel()

	t.Run("only", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.OnlyExcept("author", []string{"User/1", "User/2"}, nil)

		sql, args := b.Build(1)
		require.Equal(t, " WHERE author IN ($1, $2)", sql)
		require.Equal(t, []any{"User/1", "User/2"}, args)
	})

	t.Run("except", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.OnlyExcept("author", nil, []string{"User/3"})

		sql, args := b.Build(1)
		require.Equal(t, " WHERE author NOT IN ($1)", sql)
		require.Equal(t, []any{"User/3"}, args)
	})

	t.Run("except subtracted from only", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.OnlyExcept("author", []string{"User/1", "User/2"}, []string{"User/2"})

		sql, args := b.Build(1)
		require.Equal(t, " WHERE author IN ($1)", sql)
		require.Equal(t, []any{"User/1"}, args)
	})

	t.Run("empty survivors match nothing", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.OnlyExcept("author", []string{"User/1"}, []string{"User/1"})

		sql, args := b.Build(1)
		require.Equal(t, " WHERE FALSE", sql)
		require.Empty(t, args)
	})

	t.Run("both empty is a no-op", func(t *testing.T) {
		t.Parallel()
		var b query.Builder
		b.OnlyExcept("author", nil, nil)

		sql, _ := b.Build(1)
		require.Empty(t, sql)
	})
}

func TestBuilderBuildWhere(t *testing.T) {
	t.Parallel()

	var b query.Builder
	b.Where("list_id = ?", "l1").Order("sort_order", false, "sort_order").Limit(5).Offset(10)

	sql, args := b.BuildWhere(1)
	require.Equal(t, " WHERE list_id = $1", sql)
	require.Equal(t, []any{"l1"}, args)
}
