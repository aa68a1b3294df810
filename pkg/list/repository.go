package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trelliskit/trellis/pkg/db"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

const (
	listColumns = "id, owner, title, caption, created_at, updated_at"
	itemColumns = "id, list_id, object, name, state, sort_order, created_at, updated_at"
)

// PgRepository stores lists and their items in PostgreSQL. Ordering
// mutations run transactionally so sort orders stay dense.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a repository on the pool.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// CreateList inserts the list.
func (r *PgRepository) CreateList(ctx context.Context, l *List) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trellis_lists (`+listColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.Owner.String(), l.Title, l.Caption, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("list: insert: %w", err)
	}
	return nil
}

// GetList returns the list by ID, or ErrNotFound.
func (r *PgRepository) GetList(ctx context.Context, id string) (*List, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM trellis_lists WHERE id = $1`, id)
	return scanList(row)
}

// UpdateList persists title and caption.
func (r *PgRepository) UpdateList(ctx context.Context, l *List) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_lists SET title = $2, caption = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.Title, l.Caption, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("list: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteList removes the list; items cascade at the schema level.
func (r *PgRepository) DeleteList(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trellis_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("list: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddItem appends the item at the next sort order. Uniqueness collisions
// map to ErrDuplicateObject / ErrDuplicateName.
func (r *PgRepository) AddItem(ctx context.Context, item *Item) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM trellis_list_items WHERE list_id = $1`, item.ListID,
		).Scan(&item.SortOrder)
		if err != nil {
			return fmt.Errorf("list: next sort order: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO trellis_list_items (`+itemColumns+`)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
			item.ID, item.ListID, item.Object.String(), item.Name,
			string(item.State), item.SortOrder, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return mapItemConstraint(err)
		}
		return nil
	})
}

// RemoveItem deletes the item and closes the gap it leaves.
func (r *PgRepository) RemoveItem(ctx context.Context, listID, itemID string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var order int
		err := tx.QueryRow(ctx, `
			DELETE FROM trellis_list_items WHERE id = $1 AND list_id = $2
			RETURNING sort_order`, itemID, listID,
		).Scan(&order)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("list: remove item: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE trellis_list_items SET sort_order = sort_order - 1
			WHERE list_id = $1 AND sort_order > $2`, listID, order)
		if err != nil {
			return fmt.Errorf("list: close gap: %w", err)
		}
		return nil
	})
}

// MoveItem repositions the item, clamping position into [0, n-1] and
// shifting everything in between.
func (r *PgRepository) MoveItem(ctx context.Context, listID, itemID string, position int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current, count int
		err := tx.QueryRow(ctx, `
			SELECT sort_order, (SELECT COUNT(*) FROM trellis_list_items WHERE list_id = $2)
			FROM trellis_list_items WHERE id = $1 AND list_id = $2`,
			itemID, listID,
		).Scan(&current, &count)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("list: locate item: %w", err)
		}

		position = max(0, min(position, count-1))
		if position == current {
			return nil
		}

		if position < current {
			_, err = tx.Exec(ctx, `
				UPDATE trellis_list_items SET sort_order = sort_order + 1
				WHERE list_id = $1 AND sort_order >= $2 AND sort_order < $3`,
				listID, position, current)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE trellis_list_items SET sort_order = sort_order - 1
				WHERE list_id = $1 AND sort_order > $2 AND sort_order <= $3`,
				listID, current, position)
		}
		if err != nil {
			return fmt.Errorf("list: shift items: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE trellis_list_items SET sort_order = $3, updated_at = NOW()
			WHERE id = $1 AND list_id = $2`, itemID, listID, position)
		if err != nil {
			return fmt.Errorf("list: move item: %w", err)
		}
		return nil
	})
}

// SetItemState flips an item's selection state.
func (r *PgRepository) SetItemState(ctx context.Context, listID, itemID string, state ItemState) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trellis_list_items SET state = $3, updated_at = NOW()
		WHERE id = $1 AND list_id = $2`, itemID, listID, string(state))
	if err != nil {
		return fmt.Errorf("list: set state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// GetItem returns one item by ID.
func (r *PgRepository) GetItem(ctx context.Context, listID, itemID string) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM trellis_list_items WHERE id = $1 AND list_id = $2`,
		itemID, listID)
	return scanItem(row)
}

// GetItemByName returns the item carrying the per-list unique name.
func (r *PgRepository) GetItemByName(ctx context.Context, listID, name string) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM trellis_list_items WHERE list_id = $1 AND name = $2`,
		listID, name)
	return scanItem(row)
}

// Items returns a list's items in sort order.
func (r *PgRepository) Items(ctx context.Context, listID string, opts ItemOptions) ([]Item, error) {
	frag, args := opts.SQL(listID, 1)
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM trellis_list_items`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("list: items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := scanItemInto(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Containing returns lists that include the object.
func (r *PgRepository) Containing(ctx context.Context, object fingerprint.Fingerprint, opts ContainingOptions) ([]List, error) {
	frag, args := opts.SQL(object, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.owner, l.title, l.caption, l.created_at, l.updated_at
		FROM trellis_lists l
		JOIN trellis_list_items i ON i.list_id = l.id`+frag, args...)
	if err != nil {
		return nil, fmt.Errorf("list: containing: %w", err)
	}
	defer rows.Close()

	var out []List
	for rows.Next() {
		var l List
		if err := scanListInto(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// mapItemConstraint translates unique-violation errors into package
// sentinels by constraint name.
func mapItemConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "trellis_list_items_list_object_key":
			return ErrDuplicateObject
		case "trellis_list_items_list_name_key":
			return ErrDuplicateName
		}
	}
	return fmt.Errorf("list: add item: %w", err)
}

func scanList(row pgx.Row) (*List, error) {
	var l List
	if err := scanListInto(row, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanListInto(row pgx.Row, l *List) error {
	var owner string
	err := row.Scan(&l.ID, &owner, &l.Title, &l.Caption, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("list: scan: %w", err)
	}
	l.Owner = fingerprint.Fingerprint(owner)
	return nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := scanItemInto(row, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func scanItemInto(row pgx.Row, it *Item) error {
	var object, state string
	var name *string
	err := row.Scan(&it.ID, &it.ListID, &object, &name, &state, &it.SortOrder,
		&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("list: scan item: %w", err)
	}
	it.Object = fingerprint.Fingerprint(object)
	it.State = ItemState(state)
	if name != nil {
		it.Name = *name
	}
	return nil
}
