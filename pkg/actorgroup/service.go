package actorgroup

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
	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id string) (*Group, error)
	GetGroupByName(ctx context.Context, name string) (*Group, error)
	UpdateGroup(ctx context.Context, g *Group) error
	DeleteGroup(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, groupID string, actor fingerprint.Fingerprint) error
	Members(ctx context.Context, groupID string, opts MemberOptions) ([]Member, error)
	GroupsFor(ctx context.Context, actor fingerprint.Fingerprint, opts GroupOptions) ([]Group, error)
}

// Service applies access checks around group persistence. The group owner
// can always read and mutate; other actors need read (reads) or
// group.manage_members / manage (mutations) on the owner scope.
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

// NewService creates the group service. A nil checker denies everything.
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

// CreateGroupInput is the payload for CreateGroup.
type CreateGroupInput struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

// UpdateGroupInput is the payload for UpdateGroup; nil fields are left
// unchanged.
type UpdateGroupInput struct {
	Name *string `json:"name"`
	Note *string `json:"note"`
}

// AddMemberInput is the payload for AddMember.
type AddMemberInput struct {
	Actor fingerprint.Fingerprint `json:"actor"`
	Title string                  `json:"title"`
	Note  string                  `json:"note"`
}

// CreateGroup creates a group owned by the acting entity.
func (s *Service) CreateGroup(ctx context.Context, in CreateGroupInput) (*Group, error) {
	actor, ok := access.ActorFromContext(ctx)
	if !ok {
		return nil, service.Unauthorized("no acting entity")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, service.Unprocessable("name is required")
	}

	now := time.Now().UTC()
	g := &Group{
		ID:        id.New(),
		Name:      name,
		Note:      strings.TrimSpace(in.Note),
		Owner:     actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, service.Conflict("group name already taken", service.WithCause(err))
		}
		return nil, service.Internal("create group", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "group created",
		slog.String("group_id", g.ID), slog.String("name", g.Name))
	return g, nil
}

// GetGroup returns a group readable by the acting entity.
func (s *Service) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	return s.loadReadable(ctx, groupID)
}

// GetGroupByName resolves a group by its normalized name.
func (s *Service) GetGroupByName(ctx context.Context, name string) (*Group, error) {
	g, err := s.repo.GetGroupByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, service.NotFound("group not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("load group", service.WithCause(err))
	}
	if err := s.authorizeRead(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGroup edits name or note.
func (s *Service) UpdateGroup(ctx context.Context, groupID string, in UpdateGroupInput) (*Group, error) {
	g, err := s.loadMutable(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, service.Unprocessable("name cannot be empty")
		}
		g.Name = strings.TrimSpace(*in.Name)
	}
	if in.Note != nil {
		g.Note = strings.TrimSpace(*in.Note)
	}
	g.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName):
			return nil, service.Conflict("group name already taken", service.WithCause(err))
		case errors.Is(err, ErrNotFound):
			return nil, service.NotFound("group not found", service.WithCause(err))
		}
		return nil, service.Internal("update group", service.WithCause(err))
	}
	return g, nil
}

// DeleteGroup removes a group and its memberships.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.loadMutable(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.DeleteGroup(ctx, groupID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return service.NotFound("group not found", service.WithCause(err))
		}
		return service.Internal("delete group", service.WithCause(err))
	}

	s.log.InfoContext(ctx, "group deleted", slog.String("group_id", groupID))
	return nil
}

// AddMember adds an actor to the group.
func (s *Service) AddMember(ctx context.Context, groupID string, in AddMemberInput) (*Member, error) {
	if _, err := s.loadMutable(ctx, groupID); err != nil {
		return nil, err
	}
	if !in.Actor.Valid() {
		return nil, service.BadRequest("actor is required")
	}

	now := time.Now().UTC()
	m := &Member{
		ID:        id.New(),
		GroupID:   groupID,
		Actor:     in.Actor,
		Title:     strings.TrimSpace(in.Title),
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.AddMember(ctx, m); err != nil {
		if errors.Is(err, ErrDuplicateMember) {
			return nil, service.Conflict("actor already a member", service.WithCause(err))
		}
		return nil, service.Internal("add member", service.WithCause(err))
	}
	return m, nil
}

// RemoveMember drops an actor from the group.
func (s *Service) RemoveMember(ctx context.Context, groupID string, actor fingerprint.Fingerprint) error {
	if _, err := s.loadMutable(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, groupID, actor); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return service.NotFound("member not found", service.WithCause(err))
		}
		return service.Internal("remove member", service.WithCause(err))
	}
	return nil
}

// Members returns the group's members.
func (s *Service) Members(ctx context.Context, groupID string, opts MemberOptions) ([]Member, error) {
	if _, err := s.loadReadable(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.Members(ctx, groupID, opts)
	if err != nil {
		return nil, service.Internal("list members", service.WithCause(err))
	}
	return members, nil
}

// GroupsFor returns the groups an actor belongs to. Actors can always
// list their own memberships; anyone else needs index on the actor.
func (s *Service) GroupsFor(ctx context.Context, actor fingerprint.Fingerprint, opts GroupOptions) ([]Group, error) {
	if !actor.Valid() {
		return nil, service.BadRequest("actor is required")
	}
	if current, ok := access.ActorFromContext(ctx); !ok || current != actor {
		if err := s.authorizeAny(ctx, actor, access.PermissionIndex); err != nil {
			return nil, err
		}
	}
	groups, err := s.repo.GroupsFor(ctx, actor, opts)
	if err != nil {
		return nil, service.Internal("groups for actor", service.WithCause(err))
	}
	return groups, nil
}

func (s *Service) loadReadable(ctx context.Context, groupID string) (*Group, error) {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) authorizeRead(ctx context.Context, g *Group) error {
	if actor, ok := access.ActorFromContext(ctx); ok && actor == g.Owner {
		return nil
	}
	return s.authorizeAny(ctx, g.Owner, access.PermissionRead)
}

func (s *Service) loadMutable(ctx context.Context, groupID string) (*Group, error) {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if actor, ok := access.ActorFromContext(ctx); ok && actor == g.Owner {
		return g, nil
	}
	if err := s.authorizeAny(ctx, g.Owner, access.PermissionManageMembers, access.PermissionManage); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) load(ctx context.Context, groupID string) (*Group, error) {
	g, err := s.repo.GetGroup(ctx, groupID)
	if errors.Is(err, ErrNotFound) {
		return nil, service.NotFound("group not found", service.WithCause(err))
	}
	if err != nil {
		return nil, service.Internal("load group", service.WithCause(err))
	}
	return g, nil
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
