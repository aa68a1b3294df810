package attachment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

const attachmentColumns = "id, attachable, author, title, description, key, filename, content_type, size, variants, created_at, updated_at"

// PgRepository stores attachment metadata in PostgreSQL. The variants map
// rides in a JSONB column.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository on the pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Create inserts the attachment row.
func (r *PgRepository) Create(ctx context.Context, a *Attachment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trellis_attachments (`+attachmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Attachable.String(), a.Author.String(), a.Title, a.Description,
		a.Key, a.Filename, a.ContentType, a.Size, variantsOrEmpty(a.Variants),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("attachment: insert: %w", err)
	}
	return nil
}

// Get returns the attachment by ID, or ErrNotFound.
func (r *PgRepository) Get(ctx context.Context, id string) (*Attachment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+attachmentColumns+` FROM trellis_attachments WHERE id = $1`, id)
	return scanAttachment(row)
}

// Update persists the metadata fields (title, description).
func (r *PgRepository) Update(ctx context.Context, a *Attachment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_attachments
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		a.ID, a.Title, a.Description, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("attachment: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVariants replaces the variants map, typically after thumbnail
// generation.
func (r *PgRepository) SetVariants(ctx context.Context, id string, variants map[string]string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_attachments SET variants = $2, updated_at = NOW() WHERE id = $1`,
		id, variantsOrEmpty(variants),
	)
	if err != nil {
		return fmt.Errorf("attachment: set variants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row and returns the deleted attachment so callers
// can clean up its blobs.
func (r *PgRepository) Delete(ctx context.Context, id string) (*Attachment, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM trellis_attachments WHERE id = $1 RETURNING `+attachmentColumns, id)
	return scanAttachment(row)
}

// List returns attachments matching the options.
func (r *PgRepository) List(ctx context.Context, opts ListOptions) ([]Attachment, error) {
	frag, args := opts.SQL(1)
	rows, err := r.pool.Query(ctx, `SELECT `+attachmentColumns+` FROM trellis_attachments`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("attachment: list: %w", err)
	}
	defer rows.Close()

	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := scanAttachmentInto(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of attachments matching the options.
func (r *PgRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	frag, args := opts.CountSQL(1)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trellis_attachments`+frag, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("attachment: count: %w", err)
	}
	return n, nil
}

// LiveKeys returns every storage key any attachment row references,
// originals and variants alike. The sweep task deletes blobs outside
// this set.
func (r *PgRepository) LiveKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, variants FROM trellis_attachments`)
	if err != nil {
		return nil, fmt.Errorf("attachment: live keys: %w", err)
	}
	defer rows.Close()

	live := make(map[string]struct{})
	for rows.Next() {
		var key string
		var variants map[string]string
		if err := rows.Scan(&key, &variants); err != nil {
			return nil, fmt.Errorf("attachment: scan keys: %w", err)
		}
		live[key] = struct{}{}
		for _, vk := range variants {
			live[vk] = struct{}{}
		}
	}
	return live, rows.Err()
}

func variantsOrEmpty(v map[string]string) map[string]string {
	if v == nil {
		return map[string]string{}
	}
	return v
}

func scanAttachment(row pgx.Row) (*Attachment, error) {
	var a Attachment
	if err := scanAttachmentInto(row, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAttachmentInto(row pgx.Row, a *Attachment) error {
	var attachable, author string
	err := row.Scan(&a.ID, &attachable, &author, &a.Title, &a.Description,
		&a.Key, &a.Filename, &a.ContentType, &a.Size, &a.Variants,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("attachment: scan: %w", err)
	}
	a.Attachable = fingerprint.Fingerprint(attachable)
	a.Author = fingerprint.Fingerprint(author)
	return nil
}
