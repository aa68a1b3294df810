package list

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/id"
	"github.com/trelliskit/trellis/pkg/service"
)

// Repository is the persistence the service needs.
type Repository interface {
	CreateList(ctx context.Context, l *List) error
	GetList(ctx context.Context, id string) (*List, error)
	UpdateList(ctx context.Context, l *List) error
	DeleteList(ctx context.Context, id string) error

	AddItem(ctx context.Context, item *Item) error
	RemoveItem(ctx context.Context, listID, itemID string) error
	MoveItem(ctx context.Context, listID, itemID string, position int) error
	SetItemState(ctx context.Context, listID, itemID string, state ItemState) error
	GetItem(ctx context.Context, listID, itemID string) (*Item, error)
	GetItemByName(ctx context.Context, listID, name string) (*Item, error)
	Items(ctx context.Context, listID string, opts ItemOptions) ([]Item, error)
	Containing(ctx context.Context, object fingerprint.Fingerprint, opts ContainingOptions) ([]List, error)
}

// Service applies access checks around list persistence. The owner of a
// list can always read and mutate it; other actors need read (reads) or
// list.manage_items / manage (mutations) on the owner scope.
type Service struct {
	repo    Repository
	checker access.Checker
	log     *slog.Logger
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

// NewService creates the list service. A nil checker denies everything.
func NewService(repo Repository, checker access.Checker, opts ...ServiceOption) *Service {
	if checker == nil {
		checker = access.DenyAll()
	}
	s := &Service{repo: repo, checker: checker, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateListInput is the payload for CreateList.
type CreateListInput struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
}

// UpdateListInput is the payload for UpdateList; nil fields are left
// unchanged.
type UpdateListInput struct {
	Title   *string `json:"title"`
	Caption *string `json:"caption"`
}

// AddItemInput is the payload for AddItem. State defaults to selected.
type AddItemInput struct {
	Object fingerprint.Fingerprint `json:"object"`
	Name   string                  `json:"name"`
	State  ItemState               `json:"state"`
}

// CreateList creates a list owned by the acting entity.
func (s *Service) CreateList(ctx context.Context, in CreateListInput) (*List, error) {
	actor, ok := access.ActorFromContext(ctx)
	if !ok {
		return nil, service.Unauthorized("no acting entity")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, service.Unprocessable("title is required")
	}

	now := time.Now().UTC()
	l := &List{
		ID:        id.New(),
		Owner:     actor,
		Title:     strings.TrimSpace(in.Title),
		Caption:   strings.TrimSpace(in.Caption),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, service.Internal("create list", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "list created", slog.String("list_id", l.ID))
	return l, nil
}

// GetList returns a list readable by the acting entity.
func (s *Service) GetList(ctx context.Context, listID string) (*List, error) {
	return s.loadReadable(ctx, listID)
}

// UpdateList edits title or caption.
func (s *Service) UpdateList(ctx context.Context, listID string, in UpdateListInput) (*List, error) {
	l, err := s.loadMutable(ctx, listID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, service.Unprocessable("title cannot be empty")
		}
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Caption != nil {
		l.Caption = strings.TrimSpace(*in.Caption)
	}
	l.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateList(ctx, l); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, service.NotFound("list not found", service.WithCause(err))
		}
		return nil, service.Internal("update list", service.WithCause(err))
	}
	return l, nil
}

// DeleteList removes a list and its items.
func (s *Service) DeleteList(ctx context.Context, listID string) error {
	if _, err := s.loadMutable(ctx, listID); err != nil {
		return err
	}
	if err := s.repo.DeleteList(ctx, listID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return service.NotFound("list not found", service.WithCause(err))
		}
		return service.Internal("delete list", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "list deleted", slog.String("list_id", listID))
	return nil
}

// AddItem appends an object to the list at the next sort order.
func (s *Service) AddItem(ctx context.Context, listID string, in AddItemInput) (*Item, error) {
	if _, err := s.loadMutable(ctx, listID); err != nil {
		return nil, err
	}
	if !in.Object.Valid() {
		return nil, service.BadRequest("object is required")
	}

	state := in.State
	if state == "" {
		state = StateSelected
	}
	if !state.Valid() {
		return nil, service.Unprocessable("invalid state", service.WithCause(ErrInvalidState))
	}

	now := time.Now().UTC()
	item := &Item{
		ID:        id.New(),
		ListID:    listID,
		Object:    in.Object,
		Name:      strings.TrimSpace(in.Name),
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateObject):
			return nil, service.Conflict("object already on list", service.WithCause(err))
		case errors.Is(err, ErrDuplicateName):
			return nil, service.Conflict("item name already taken", service.WithCause(err))
		}
		return nil, service.Internal("add item", service.WithCause(err))
	}
	return item, nil
}

// RemoveItem deletes an item; remaining items close the gap.
func (s *Service) RemoveItem(ctx context.Context, listID, itemID string) error {
	if _, err := s.loadMutable(ctx, listID); err != nil {
		return err
	}
	if err := s.repo.RemoveItem(ctx, listID, itemID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return service.NotFound("item not found", service.WithCause(err))
		}
		return service.Internal("remove item", service.WithCause(err))
	}
	return nil
}

// MoveItem repositions an item; out-of-range targets are clamped.
func (s *Service) MoveItem(ctx context.Context, listID, itemID string, position int) error {
	if _, err := s.loadMutable(ctx, listID); err != nil {
		return err
	}
	if err := s.repo.MoveItem(ctx, listID, itemID, position); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return service.NotFound("item not found", service.WithCause(err))
		}
		return service.Internal("move item", service.WithCause(err))
	}
	return nil
}

// SetItemState selects or deselects an item.
func (s *Service) SetItemState(ctx context.Context, listID, itemID string, state ItemState) error {
	if _, err := s.loadMutable(ctx, listID); err != nil {
		return err
	}
	if !state.Valid() {
		return service.Unprocessable("invalid state", service.WithCause(ErrInvalidState))
	}
	if err := s.repo.SetItemState(ctx, listID, itemID, state); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return service.NotFound("item not found", service.WithCause(err))
		}
		return service.Internal("set item state", service.WithCause(err))
	}
	return nil
}

// Items returns a list's items in sort order.
func (s *Service) Items(ctx context.Context, listID string, opts ItemOptions) ([]Item, error) {
	if _, err := s.loadReadable(ctx, listID); err != nil {
		return nil, err
	}
	items, err := s.repo.Items(ctx, listID, opts)
	if err != nil {
		return nil, service.Internal("list items", service.WithCause(err))
	}
	return items, nil
}

// GetItem returns one item by ID.
func (s *Service) GetItem(ctx context.Context, listID, itemID string) (*Item, error) {
	if _, err := s.loadReadable(ctx, listID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItem(ctx, listID, itemID)
	if errors.Is(err, ErrItemNotFound) {
		return nil, service.NotFound("item not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("get item", service.WithCause(err))
	}
	return item, nil
}

// GetItemByName resolves an item by its per-list unique name.
func (s *Service) GetItemByName(ctx context.Context, listID, name string) (*Item, error) {
	if _, err := s.loadReadable(ctx, listID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByName(ctx, listID, name)
	if errors.Is(err, ErrItemNotFound) {
		return nil, service.NotFound("item not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("get item", service.WithCause(err))
	}
	return item, nil
}

// Containing returns lists that include the object, requiring the index
// permission on the object.
func (s *Service) Containing(ctx context.Context, object fingerprint.Fingerprint, opts ContainingOptions) ([]List, error) {
	if !object.Valid() {
		return nil, service.BadRequest("object is required")
	}
	if err := s.authorizeAny(ctx, object, access.PermissionIndex); err != nil {
		return nil, err
	}
	lists, err := s.repo.Containing(ctx, object, opts)
	if err != nil {
		return nil, service.Internal("containing lists", service.WithCause(err))
	}
	return lists, nil
}

func (s *Service) loadReadable(ctx context.Context, listID string) (*List, error) {
	l, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if actor, ok := access.ActorFromContext(ctx); ok && actor == l.Owner {
		return l, nil
	}
	if err := s.authorizeAny(ctx, l.Owner, access.PermissionRead); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) loadMutable(ctx context.Context, listID string) (*List, error) {
	l, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if actor, ok := access.ActorFromContext(ctx); ok && actor == l.Owner {
		return l, nil
	}
	if err := s.authorizeAny(ctx, l.Owner, access.PermissionManageItems, access.PermissionManage); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) load(ctx context.Context, listID string) (*List, error) {
	l, err := s.repo.GetList(ctx, listID)
	if errors.Is(err, ErrNotFound) {
		return nil, service.NotFound("list not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("load list", service.WithCause(err))
	}
	return l, nil
}

// authorizeAny passes when the checker allows any one of the operations.
func (s *Service) authorizeAny(ctx context.Context, asset fingerprint.Fingerprint, ops ...access.Permission) error {
	actor, _ := access.ActorFromContext(ctx)
	for _, op := range ops {
		allowed, err := s.checker.Allowed(ctx, actor, op, asset)
		if err != nil {
			return service.Internal("access check", service.WithCause(err))
		}
		if allowed {
			return nil
		}
	}
	return service.Forbidden("permission denied")
}
