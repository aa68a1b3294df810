package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v3"

	"github.com/trelliskit/trellis/pkg/comment"
	"github.com/trelliskit/trellis/pkg/markdown"
)

// Config holds Resend email provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

const excerptLength = 120

// RecipientResolver maps a freshly created comment to the email addresses
// that should hear about it. Returning an empty slice skips delivery.
type RecipientResolver func(ctx context.Context, c *comment.Comment) ([]string, error)

// Message is a rendered notification ready for delivery.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// CommentMessage renders the notification for a new comment. The subject
// prefers the comment title and falls back to a body excerpt.
func CommentMessage(c *comment.Comment) Message {
	subject := c.Title
	if subject == "" {
		subject = markdown.Excerpt(c.Body, excerptLength)
	}
	if c.IsReply() {
		subject = "Re: " + subject
	}
	return Message{
		Subject: subject,
		HTML:    c.BodyHTML,
		Text:    markdown.Excerpt(c.Body, excerptLength),
	}
}

// emailSender is the slice of the Resend API the notifier uses.
type emailSender interface {
	SendWithContext(ctx context.Context, req *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Notifier sends comment notifications through Resend.
type Notifier struct {
	emails  emailSender
	config  Config
	resolve RecipientResolver
	log     *slog.Logger
}

// NotifierOption configures the notifier.
type NotifierOption func(*Notifier)

// WithLogger sets the notifier logger.
func WithLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.log = l
		}
	}
}

// NewNotifier creates a notifier backed by the Resend API.
func NewNotifier(cfg Config, resolve RecipientResolver, opts ...NotifierOption) (*Notifier, error) {
	if resolve == nil {
		return nil, ErrResolverRequired
	}
	n := &Notifier{
		emails:  resend.NewClient(cfg.APIKey).Emails,
		config:  cfg,
		resolve: resolve,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NotifyComment resolves recipients and delivers the notification. No
// recipients means nothing to do.
func (n *Notifier) NotifyComment(ctx context.Context, c *comment.Comment) error {
	recipients, err := n.resolve(ctx, c)
	if err != nil {
		return fmt.Errorf("notify: resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	msg := CommentMessage(c)
	_, err = n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from(),
		To:      recipients,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	n.log.InfoContext(ctx, "comment notification sent",
		slog.String("comment_id", c.ID),
		slog.Int("recipients", len(recipients)),
	)
	return nil
}

func (n *Notifier) from() string {
	if n.config.SenderName != "" {
		return fmt.Sprintf("%s <%s>", n.config.SenderName, n.config.SenderEmail)
	}
	return n.config.SenderEmail
}
