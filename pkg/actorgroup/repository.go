package actorgroup

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

const (
	groupColumns  = "id, name, normalized_name, note, owner, created_at, updated_at"
	memberColumns = "id, group_id, actor, title, note, created_at, updated_at"
)

// PgRepository stores groups and members in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository on the pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// CreateGroup inserts the group; name collisions map to ErrDuplicateName.
func (r *PgRepository) CreateGroup(ctx context.Context, g *Group) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trellis_actor_groups (`+groupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Name, NormalizeName(g.Name), g.Note, g.Owner.String(),
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return mapGroupConstraint(err)
	}
	return nil
}

// GetGroup returns the group by ID, or ErrNotFound.
func (r *PgRepository) GetGroup(ctx context.Context, id string) (*Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM trellis_actor_groups WHERE id = $1`, id)
	return scanGroup(row)
}

// GetGroupByName resolves a group by its normalized name.
func (r *PgRepository) GetGroupByName(ctx context.Context, name string) (*Group, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM trellis_actor_groups WHERE normalized_name = $1`,
		NormalizeName(name))
	return scanGroup(row)
}

// UpdateGroup persists name and note.
func (r *PgRepository) UpdateGroup(ctx context.Context, g *Group) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_actor_groups
		SET name = $2, normalized_name = $3, note = $4, updated_at = $5
		WHERE id = $1`,
		g.ID, g.Name, NormalizeName(g.Name), g.Note, g.UpdatedAt,
	)
	if err != nil {
		return mapGroupConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes the group; members cascade at the schema level.
func (r *PgRepository) DeleteGroup(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trellis_actor_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("actorgroup: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember inserts the membership; actor collisions map to
// ErrDuplicateMember.
func (r *PgRepository) AddMember(ctx context.Context, m *Member) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trellis_actor_group_members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.GroupID, m.Actor.String(), m.Title, m.Note, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMember
		}
		return fmt.Errorf("actorgroup: add member: %w", err)
	}
	return nil
}

// RemoveMember deletes the actor's membership in the group.
func (r *PgRepository) RemoveMember(ctx context.Context, groupID string, actor fingerprint.Fingerprint) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM trellis_actor_group_members WHERE group_id = $1 AND actor = $2`,
		groupID, actor.String())
	if err != nil {
		return fmt.Errorf("actorgroup: remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Members returns the group's members oldest first.
func (r *PgRepository) Members(ctx context.Context, groupID string, opts MemberOptions) ([]Member, error) {
	frag, args := opts.SQL(groupID, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+` FROM trellis_actor_group_members`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("actorgroup: members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := scanMemberInto(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GroupsFor returns every group the actor belongs to.
func (r *PgRepository) GroupsFor(ctx context.Context, actor fingerprint.Fingerprint, opts GroupOptions) ([]Group, error) {
	frag, args := opts.SQL(actor, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.name, g.normalized_name, g.note, g.owner, g.created_at, g.updated_at
		FROM trellis_actor_groups g
		JOIN trellis_actor_group_members m ON m.group_id = g.id`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("actorgroup: groups for actor: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := scanGroupInto(rows, &g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func mapGroupConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateName
	}
	return fmt.Errorf("actorgroup: write: %w", err)
}

func scanGroup(row pgx.Row) (*Group, error) {
	var g Group
	if err := scanGroupInto(row, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGroupInto(row pgx.Row, g *Group) error {
	var owner, normalized string
	err := row.Scan(&g.ID, &g.Name, &normalized, &g.Note, &owner, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("actorgroup: scan: %w", err)
	}
	g.Owner = fingerprint.Fingerprint(owner)
	return nil
}

func scanMemberInto(row pgx.Row, m *Member) error {
	var actor string
	err := row.Scan(&m.ID, &m.GroupID, &actor, &m.Title, &m.Note, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("actorgroup: scan member: %w", err)
	}
	m.Actor = fingerprint.Fingerprint(actor)
	return nil
}
