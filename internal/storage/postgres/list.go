package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/provision-api/internal/domain/list"
)

var _ list.Repository = (*ListRepository)(nil)

// ListRepository implements list.Repository backed by PostgreSQL.
type ListRepository struct {
	pool *pgxpool.Pool
}

// NewListRepository returns a ListRepository that uses the given pool.
func NewListRepository(pool *pgxpool.Pool) *ListRepository {
	return &ListRepository{pool: pool}
}

// List returns all lists newest first, fetching each list's items
// concurrently.
func (r *ListRepository) List(ctx context.Context) ([]list.List, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM lists ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	defer rows.Close()

	var lists []list.List
	for rows.Next() {
		var l list.List
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range lists {
		g.Go(func() error {
			items, err := r.fetchItems(ctx, lists[i].ID)
			if err != nil {
				return err
			}
			lists[i].Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lists, nil
}

// GetByID returns one list with its items joined against the live catalog.
// Returns list.ErrNotFound when no matching row exists.
func (r *ListRepository) GetByID(ctx context.Context, id int64) (*list.List, error) {
	var l list.List
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM lists WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, list.ErrNotFound
		}
		return nil, fmt.Errorf("getting list %d: %w", id, err)
	}

	items, err := r.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Items = items
	return &l, nil
}

// fetchItems loads a list's items with the current catalog name, unit and
// price joined in; list items track catalog edits, unlike order snapshots.
func (r *ListRepository) fetchItems(ctx context.Context, listID int64) ([]list.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT li.ingredient_id, i.name, i.unit, i.price, li.quantity
		 FROM list_items li
		 JOIN ingredients i ON i.id = li.ingredient_id
		 WHERE li.list_id = $1
		 ORDER BY li.id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("listing items of list %d: %w", listID, err)
	}
	defer rows.Close()

	var items []list.Item
	for rows.Next() {
		var it list.Item
		if err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning list item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items of list %d: %w", listID, err)
	}
	return items, nil
}

// CreateParent inserts the bare list record and returns its id.
func (r *ListRepository) CreateParent(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO lists (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating list %q: %w", name, err)
	}
	return id, nil
}

// InsertItems writes the child rows for a list in one batch.
func (r *ListRepository) InsertItems(ctx context.Context, listID int64, items []list.ItemInput) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(
			`INSERT INTO list_items (list_id, ingredient_id, quantity) VALUES ($1, $2, $3)`,
			listID, it.IngredientID, it.Quantity)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("inserting items of list %d: %w", listID, err)
		}
	}
	return nil
}

// UpdateParent renames a list. Returns list.ErrNotFound when the row does not
// exist.
func (r *ListRepository) UpdateParent(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE lists SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("updating list %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return list.ErrNotFound
	}
	return nil
}

// DeleteItems drops every child row of a list.
func (r *ListRepository) DeleteItems(ctx context.Context, listID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM list_items WHERE list_id = $1`, listID); err != nil {
		return fmt.Errorf("deleting items of list %d: %w", listID, err)
	}
	return nil
}

// Delete removes a list; the schema cascades to its items. Returns
// list.ErrNotFound when the row does not exist.
func (r *ListRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting list %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return list.ErrNotFound
	}
	return nil
}
