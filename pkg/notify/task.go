package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/trelliskit/trellis/pkg/comment"
)

// TaskCommentNotice is the job name for comment notification delivery.
const TaskCommentNotice = "comment.notice"

// NoticePayload identifies the comment to notify about.
type NoticePayload struct {
	CommentID string `json:"comment_id"`
}

// CommentGetter loads a comment by ID.
type CommentGetter interface {
	Get(ctx context.Context, id string) (*comment.Comment, error)
}

// NoticeTask delivers comment notifications from the job queue. Comments
// deleted before the task runs are skipped, not retried.
type NoticeTask struct {
	comments CommentGetter
	notifier *Notifier
	log      *slog.Logger
}

// NewNoticeTask creates the notification task.
func NewNoticeTask(comments CommentGetter, notifier *Notifier, log *slog.Logger) *NoticeTask {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &NoticeTask{comments: comments, notifier: notifier, log: log}
}

// Name implements the task contract.
func (t *NoticeTask) Name() string { return TaskCommentNotice }

// Handle loads the comment and sends the notification.
func (t *NoticeTask) Handle(ctx context.Context, payload NoticePayload) error {
	c, err := t.comments.Get(ctx, payload.CommentID)
	if errors.Is(err, comment.ErrNotFound) {
		t.log.DebugContext(ctx, "comment gone before notification",
			slog.String("comment_id", payload.CommentID))
		return nil
	}
	if err != nil {
		return err
	}
	return t.notifier.NotifyComment(ctx, c)
}
