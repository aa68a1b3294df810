package comment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/id"
	"github.com/trelliskit/trellis/pkg/markdown"
	"github.com/trelliskit/trellis/pkg/service"
)

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	Get(ctx context.Context, id string) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]Comment, error)
	Count(ctx context.Context, opts ListOptions) (int64, error)
}

// Service applies access checks and body rendering around the repository.
// The acting entity is read from the request context (access.WithActor).
type Service struct {
	repo    Repository
	checker access.Checker
	log     *slog.Logger
	notify  func(ctx context.Context, c *Comment)
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNotify registers a callback invoked after a comment is created,
// typically to enqueue a notification job. Failures inside the callback
// must not fail the create.
func WithNotify(fn func(ctx context.Context, c *Comment)) ServiceOption {
	return func(s *Service) { s.notify = fn }
}

// NewService creates the comment service. A nil checker denies everything.
func NewService(repo Repository, checker access.Checker, opts ...ServiceOption) *Service {
	if checker == nil {
		checker = access.DenyAll()
	}
	s := &Service{
		repo:    repo,
		checker: checker,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Commentable fingerprint.Fingerprint `json:"commentable"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
}

// UpdateInput is the payload for Update; nil fields are left unchanged.
type UpdateInput struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// List returns one page of comments on a commentable, requiring the
// index_contents permission on it.
func (s *Service) List(ctx context.Context, opts ListOptions, p service.Pagination) (service.Page[Comment], error) {
	var page service.Page[Comment]

	if !opts.Commentable.Valid() {
		return page, service.BadRequest("commentable is required")
	}
	if err := s.authorize(ctx, access.PermissionIndexContents, opts.Commentable); err != nil {
		return page, err
	}

	p = p.Normalize()
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return page, service.Internal("list comments", service.WithCause(err))
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return page, service.Internal("count comments", service.WithCause(err))
	}

	return service.NewPage(items, total, p), nil
}

// Count returns the number of comments matching the options.
func (s *Service) Count(ctx context.Context, opts ListOptions) (int64, error) {
	if !opts.Commentable.Valid() {
		return 0, service.BadRequest("commentable is required")
	}
	if err := s.authorize(ctx, access.PermissionIndexContents, opts.Commentable); err != nil {
		return 0, err
	}
	n, err := s.repo.Count(ctx, opts)
	if err != nil {
		return 0, service.Internal("count comments", service.WithCause(err))
	}
	return n, nil
}

// Create posts a comment as the acting entity, requiring comment.create
// on the commentable.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Comment, error) {
	actor, ok := access.ActorFromContext(ctx)
	if !ok {
		return nil, service.Unauthorized("no acting entity")
	}
	if !in.Commentable.Valid() {
		return nil, service.BadRequest("commentable is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, service.Unprocessable("body is required")
	}

	if err := s.authorize(ctx, access.PermissionCreateComment, in.Commentable); err != nil {
		return nil, err
	}

	html, err := markdown.Render(in.Body)
	if err != nil {
		return nil, service.Unprocessable("body could not be rendered", service.WithCause(err))
	}

	now := time.Now().UTC()
	c := &Comment{
		ID:          id.New(),
		Commentable: in.Commentable,
		Author:      actor,
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		BodyHTML:    html,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrParentNotFound) {
			return nil, service.NotFound("parent comment not found", service.WithCause(err))
		}
		return nil, service.Internal("create comment", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "comment created",
		slog.String("comment_id", c.ID),
		slog.String("commentable", c.Commentable.String()),
	)

	if s.notify != nil {
		s.notify(ctx, c)
	}
	return c, nil
}

// Get returns a comment. The author always may read their own comment;
// anyone else needs read on the commentable.
func (s *Service) Get(ctx context.Context, commentID string) (*Comment, error) {
	c, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if actor, ok := access.ActorFromContext(ctx); ok && actor == c.Author {
		return c, nil
	}
	if err := s.authorize(ctx, access.PermissionRead, c.Commentable); err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits a comment's title or body, re-rendering the HTML. Allowed
// for the author or holders of manage on the commentable.
func (s *Service) Update(ctx context.Context, commentID string, in UpdateInput) (*Comment, error) {
	c, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwnerOrManage(ctx, c); err != nil {
		return nil, err
	}

	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		if strings.TrimSpace(*in.Body) == "" {
			return nil, service.Unprocessable("body cannot be empty")
		}
		html, err := markdown.Render(*in.Body)
		if err != nil {
			return nil, service.Unprocessable("body could not be rendered", service.WithCause(err))
		}
		c.Body = *in.Body
		c.BodyHTML = html
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, service.NotFound("comment not found", service.WithCause(err))
		}
		return nil, service.Internal("update comment", service.WithCause(err))
	}
	return c, nil
}

// Delete removes a comment. Allowed for the author or holders of manage
// on the commentable.
func (s *Service) Delete(ctx context.Context, commentID string) error {
	c, err := s.load(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwnerOrManage(ctx, c); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return service.NotFound("comment not found", service.WithCause(err))
		}
		return service.Internal("delete comment", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "comment deleted", slog.String("comment_id", commentID))
	return nil
}

func (s *Service) load(ctx context.Context, commentID string) (*Comment, error) {
	c, err := s.repo.Get(ctx, commentID)
	if errors.Is(err, ErrNotFound) {
		return nil, service.NotFound("comment not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("load comment", service.WithCause(err))
	}
	return c, nil
}

func (s *Service) authorize(ctx context.Context, op access.Permission, asset fingerprint.Fingerprint) error {
	actor, _ := access.ActorFromContext(ctx)
	allowed, err := s.checker.Allowed(ctx, actor, op, asset)
	if err != nil {
		return service.Internal("access check", service.WithCause(err))
	}
	if !allowed {
		return service.Forbidden("permission denied")
	}
	return nil
}

func (s *Service) authorizeOwnerOrManage(ctx context.Context, c *Comment) error {
	if actor, ok := access.ActorFromContext(ctx); ok && actor == c.Author {
		return nil
	}
	return s.authorize(ctx, access.PermissionManage, c.Commentable)
}
