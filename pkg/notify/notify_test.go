package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/comment"
	"github.com/trelliskit/trellis/pkg/notify"
)

func TestCommentMessage(t *testing.T) {
	t.Parallel()

	t.Run("title becomes subject", func(t *testing.T) {
		t.Parallel()
		msg := notify.CommentMessage(&comment.Comment{
			Title:    "Release notes",
			Body:     "**shipped** today",
			BodyHTML: "<p><strong>shipped</strong> today</p>",
		})
		require.Equal(t, "Release notes", msg.Subject)
		require.Equal(t, "<p><strong>shipped</strong> today</p>", msg.HTML)
		require.Equal(t, "shipped today", msg.Text)
	})

	t.Run("untitled falls back to excerpt", func(t *testing.T) {
		t.Parallel()
		msg := notify.CommentMessage(&comment.Comment{Body: "just a *quick* note"})
		require.Equal(t, "just a quick note", msg.Subject)
	})

	t.Run("replies get a prefix", func(t *testing.T) {
		t.Parallel()
		msg := notify.CommentMessage(&comment.Comment{
			Commentable: "Comment/parent",
			Title:       "agreed",
			Body:        "agreed",
		})
		require.Equal(t, "Re: agreed", msg.Subject)
	})
}

func TestNewNotifierRequiresResolver(t *testing.T) {
	t.Parallel()

	_, err := notify.NewNotifier(notify.Config{}, nil)
	require.ErrorIs(t, err, notify.ErrResolverRequired)

	resolve := func(context.Context, *comment.Comment) ([]string, error) { return nil, nil }
	n, err := notify.NewNotifier(notify.Config{APIKey: "re_test"}, resolve)
	require.NoError(t, err)
	require.NotNil(t, n)
}
