package attachment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/id"
	"github.com/trelliskit/trellis/pkg/service"
	"github.com/trelliskit/trellis/pkg/slug"
	"github.com/trelliskit/trellis/pkg/storage"
)

// DefaultMaxUploadSize caps uploads unless the engine overrides it.
const DefaultMaxUploadSize = 10 << 20 // 10 MiB

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, a *Attachment) error
	Get(ctx context.Context, id string) (*Attachment, error)
	Update(ctx context.Context, a *Attachment) error
	SetVariants(ctx context.Context, id string, variants map[string]string) error
	Delete(ctx context.Context, id string) (*Attachment, error)
	List(ctx context.Context, opts ListOptions) ([]Attachment, error)
	Count(ctx context.Context, opts ListOptions) (int64, error)
	LiveKeys(ctx context.Context) (map[string]struct{}, error)
}

// EnqueueFunc hands a task off to the job manager.
type EnqueueFunc func(ctx context.Context, task string, payload any) error

// Service applies access checks, storage, and validation around uploads.
type Service struct {
	repo    Repository
	store   storage.Storage
	checker access.Checker
	log     *slog.Logger
	enqueue EnqueueFunc
	maxSize int64
	allowed []string
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

// WithEnqueue wires the job manager so image uploads trigger thumbnail
// generation.
func WithEnqueue(fn EnqueueFunc) ServiceOption {
	return func(s *Service) { s.enqueue = fn }
}

// WithMaxUploadSize overrides the upload size cap.
func WithMaxUploadSize(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithAllowedTypes restricts uploads to the given MIME types or globs.
// Unset means any type.
func WithAllowedTypes(patterns ...string) ServiceOption {
	return func(s *Service) { s.allowed = patterns }
}

// NewService creates the attachment service. A nil checker denies
// everything.
func NewService(repo Repository, store storage.Storage, checker access.Checker, opts ...ServiceOption) *Service {
	if checker == nil {
		checker = access.DenyAll()
	}
	s := &Service{
		repo:    repo,
		store:   store,
		checker: checker,
		log:     slog.New(slog.DiscardHandler),
		maxSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadInput is the payload for Create.
type UploadInput struct {
	Attachable  fingerprint.Fingerprint
	Title       string
	Description string
	Filename    string
	Content     io.Reader
	Size        int64
}

// UpdateInput is the payload for Update; nil fields are left unchanged.
// Only metadata is mutable; the blob is immutable once uploaded.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List returns one page of attachments on an attachable, requiring the
// index_contents permission on it.
func (s *Service) List(ctx context.Context, opts ListOptions, p service.Pagination) (service.Page[Attachment], error) {
	var page service.Page[Attachment]

	if !opts.Attachable.Valid() {
		return page, service.BadRequest("attachable is required")
	}
	if err := s.authorize(ctx, access.PermissionIndexContents, opts.Attachable); err != nil {
		return page, err
	}

	p = p.Normalize()
	opts.Limit = p.Limit()
	opts.Offset = p.Offset()

	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return page, service.Internal("list attachments", service.WithCause(err))
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return page, service.Internal("count attachments", service.WithCause(err))
	}
	return service.NewPage(items, total, p), nil
}

// Create uploads a file as the acting entity, requiring attachment.create
// on the attachable. The blob is stored before the row; a failed insert
// removes the blob again.
func (s *Service) Create(ctx context.Context, in UploadInput) (*Attachment, error) {
	actor, ok := access.ActorFromContext(ctx)
	if !ok {
		return nil, service.Unauthorized("no acting entity")
	}
	if !in.Attachable.Valid() {
		return nil, service.BadRequest("attachable is required")
	}
	if in.Content == nil {
		return nil, service.BadRequest("file content is required")
	}

	if err := s.authorize(ctx, access.PermissionCreateUpload, in.Attachable); err != nil {
		return nil, err
	}

	rules := []storage.Rule{storage.NotEmpty(), storage.MaxSize(s.maxSize)}
	if len(s.allowed) > 0 {
		rules = append(rules, storage.AllowedTypes(s.allowed...))
	}

	info, err := s.store.Put(ctx, in.Content, in.Size,
		storage.WithPrefix(StoragePrefix),
		storage.WithValidation(rules...),
	)
	if err != nil {
		if isValidationError(err) {
			return nil, service.Unprocessable(err.Error(), service.WithCause(err))
		}
		return nil, service.Internal("store upload", service.WithCause(err))
	}

	now := time.Now().UTC()
	a := &Attachment{
		ID:          id.New(),
		Attachable:  in.Attachable,
		Author:      actor,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Key:         info.Key,
		Filename:    filepath.Base(in.Filename),
		ContentType: info.ContentType,
		Size:        info.Size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if derr := s.store.Delete(ctx, info.Key); derr != nil {
			s.log.WarnContext(ctx, "orphaned blob after failed insert",
				slog.String("key", info.Key), slog.Any("error", derr))
		}
		return nil, service.Internal("create attachment", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "attachment created",
		slog.String("attachment_id", a.ID),
		slog.String("content_type", a.ContentType),
		slog.Int64("size", a.Size),
	)

	if a.IsImage() && s.enqueue != nil {
		if err := s.enqueue(ctx, TaskThumbnails, ThumbnailPayload{AttachmentID: a.ID}); err != nil {
			s.log.WarnContext(ctx, "enqueue thumbnails failed",
				slog.String("attachment_id", a.ID), slog.Any("error", err))
		}
	}
	return a, nil
}

// Get returns an attachment. The author always may read their own upload;
// anyone else needs read on the attachable.
func (s *Service) Get(ctx context.Context, attachmentID string) (*Attachment, error) {
	a, err := s.load(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if actor, ok := access.ActorFromContext(ctx); ok && actor == a.Author {
		return a, nil
	}
	if err := s.authorize(ctx, access.PermissionRead, a.Attachable); err != nil {
		return nil, err
	}
	return a, nil
}

// Update edits attachment metadata. Allowed for the author or holders of
// manage on the attachable.
func (s *Service) Update(ctx context.Context, attachmentID string, in UpdateInput) (*Attachment, error) {
	a, err := s.load(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwnerOrManage(ctx, a); err != nil {
		return nil, err
	}

	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, service.NotFound("attachment not found", service.WithCause(err))
		}
		return nil, service.Internal("update attachment", service.WithCause(err))
	}
	return a, nil
}

// Delete removes an attachment. The row goes first; blob and variant
// removal is best effort, with the sweep task as backstop.
func (s *Service) Delete(ctx context.Context, attachmentID string) error {
	a, err := s.load(ctx, attachmentID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwnerOrManage(ctx, a); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, attachmentID)
	if errors.Is(err, ErrNotFound) {
		return service.NotFound("attachment not found", service.WithCause(err))
	}
	if err != nil {
		return service.Internal("delete attachment", service.WithCause(err))
	}

	keys := append([]string{deleted.Key}, mapValues(deleted.Variants)...)
	for _, key := range keys {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.WarnContext(ctx, "blob delete failed",
				slog.String("key", key), slog.Any("error", derr))
		}
	}

	s.log.InfoContext(ctx, "attachment deleted", slog.String("attachment_id", attachmentID))
	return nil
}

// URL returns a download URL for the attachment or one of its variants.
// Authorization matches Get. With download set, the URL forces a
// Content-Disposition download under a slugged filename.
func (s *Service) URL(ctx context.Context, attachmentID, variant string, download bool) (string, error) {
	a, err := s.Get(ctx, attachmentID)
	if err != nil {
		return "", err
	}

	key, ok := a.VariantKey(variant)
	if !ok {
		return "", service.NotFound("variant not found", service.WithCause(ErrUnknownVariant))
	}

	var opts []storage.URLOption
	if download {
		opts = append(opts, storage.WithDownloadName(downloadName(a.Filename)))
	}

	u, err := s.store.URL(ctx, key, opts...)
	if err != nil {
		return "", service.Internal("sign url", service.WithCause(err))
	}
	return u, nil
}

// Count returns the number of attachments matching the options.
func (s *Service) Count(ctx context.Context, opts ListOptions) (int64, error) {
	if !opts.Attachable.Valid() {
		return 0, service.BadRequest("attachable is required")
	}
	if err := s.authorize(ctx, access.PermissionIndexContents, opts.Attachable); err != nil {
		return 0, err
	}
	n, err := s.repo.Count(ctx, opts)
	if err != nil {
		return 0, service.Internal("count attachments", service.WithCause(err))
	}
	return n, nil
}

func (s *Service) load(ctx context.Context, attachmentID string) (*Attachment, error) {
	a, err := s.repo.Get(ctx, attachmentID)
	if errors.Is(err, ErrNotFound) {
		return nil, service.NotFound("attachment not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("load attachment", service.WithCause(err))
	}
	return a, nil
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

func (s *Service) authorizeOwnerOrManage(ctx context.Context, a *Attachment) error {
	if actor, ok := access.ActorFromContext(ctx); ok && actor == a.Author {
		return nil
	}
	return s.authorize(ctx, access.PermissionManage, a.Attachable)
}

func isValidationError(err error) bool {
	return errors.Is(err, storage.ErrEmptyFile) ||
		errors.Is(err, storage.ErrFileTooLarge) ||
		errors.Is(err, storage.ErrInvalidMIME)
}

// downloadName slugs the base name but keeps the original extension.
func downloadName(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return slug.MakeWithFallback(base, "download") + strings.ToLower(ext)
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
