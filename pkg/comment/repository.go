package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/pkg/db"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

const commentColumns = "id, commentable, author, title, body, body_html, reply_count, created_at, updated_at"

// PgRepository stores comments in PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository on the pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Create inserts the comment. A reply also increments its parent's reply
// count; both writes happen in one transaction.
func (r *PgRepository) Create(ctx context.Context, c *Comment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO trellis_comments (`+commentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.Commentable.String(), c.Author.String(), c.Title,
			c.Body, c.BodyHTML, c.ReplyCount, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("comment: insert: %w", err)
		}

		if c.Commentable.Type() == FingerprintType {
			tag, err := tx.Exec(ctx, `
				UPDATE trellis_comments SET reply_count = reply_count + 1 WHERE id = $1`,
				c.Commentable.ID(),
			)
			if err != nil {
				return fmt.Errorf("comment: bump reply count: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return ErrParentNotFound
			}
		}
		return nil
	})
}

// Get returns the comment by ID, or ErrNotFound.
func (r *PgRepository) Get(ctx context.Context, id string) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+` FROM trellis_comments WHERE id = $1`, id)
	return scanComment(row)
}

// Update persists title, body, and rendered HTML.
func (r *PgRepository) Update(ctx context.Context, c *Comment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_comments
		SET title = $2, body = $3, body_html = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.Title, c.Body, c.BodyHTML, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("comment: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the comment, decrementing the parent's reply count when
// the comment was a reply.
func (r *PgRepository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var commentable string
		err := tx.QueryRow(ctx, `
			DELETE FROM trellis_comments WHERE id = $1 RETURNING commentable`, id,
		).Scan(&commentable)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("comment: delete: %w", err)
		}

		if fp, perr := fingerprint.Parse(commentable); perr == nil && fp.Type() == FingerprintType {
			_, err = tx.Exec(ctx, `
				UPDATE trellis_comments
				SET reply_count = GREATEST(reply_count - 1, 0)
				WHERE id = $1`, fp.ID())
			if err != nil {
				return fmt.Errorf("comment: drop reply count: %w", err)
			}
		}
		return nil
	})
}

// List returns comments matching the options.
func (r *PgRepository) List(ctx context.Context, opts ListOptions) ([]Comment, error) {
	frag, args := opts.SQL(1)
	rows, err := r.pool.Query(ctx, `SELECT `+commentColumns+` FROM trellis_comments`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("comment: list: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := scanCommentInto(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of comments matching the options, ignoring
// paging and ordering.
func (r *PgRepository) Count(ctx context.Context, opts ListOptions) (int64, error) {
	frag, args := opts.CountSQL(1)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trellis_comments`+frag, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("comment: count: %w", err)
	}
	return n, nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := scanCommentInto(row, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCommentInto(row pgx.Row, c *Comment) error {
	var commentable, author string
	err := row.Scan(&c.ID, &commentable, &author, &c.Title, &c.Body, &c.BodyHTML,
		&c.ReplyCount, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("comment: scan: %w", err)
	}
	c.Commentable = fingerprint.Fingerprint(commentable)
	c.Author = fingerprint.Fingerprint(author)
	return nil
}
