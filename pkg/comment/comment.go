package comment

import (
	"time"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

// FingerprintType is the type segment of comment fingerprints.
const FingerprintType = "Comment"

// Comment is a single comment on a commentable object. Body holds the
// markdown source; BodyHTML the sanitized rendering served to clients.
type Comment struct {
	ID          string                  `json:"id"`
	Commentable fingerprint.Fingerprint `json:"commentable"`
	Author      fingerprint.Fingerprint `json:"author"`
	Title       string                  `json:"title,omitempty"`
	Body        string                  `json:"body"`
	BodyHTML    string                  `json:"body_html"`
	ReplyCount  int                     `json:"reply_count"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Fingerprint returns the comment's own fingerprint, used as the
// commentable of its replies.
func (c *Comment) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Make(FingerprintType, c.ID)
}

// IsReply reports whether the comment is attached to another comment.
func (c *Comment) IsReply() bool {
	return c.Commentable.Type() == FingerprintType
}
