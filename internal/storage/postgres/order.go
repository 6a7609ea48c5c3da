package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/provision-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// List returns the order history newest first, fetching each order's
// snapshot concurrently.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_number, status, total, item_count, placed_at
		 FROM orders ORDER BY placed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.Status, &o.Total, &o.ItemCount, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range orders {
		g.Go(func() error {
			items, err := r.fetchItems(ctx, orders[i].ID)
			if err != nil {
				return err
			}
			orders[i].Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetByID returns one order with its frozen item snapshot. Returns
// order.ErrNotFound when no matching row exists.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx,
		`SELECT id, order_number, status, total, item_count, placed_at
		 FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Number, &o.Status, &o.Total, &o.ItemCount, &o.PlacedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	items, err := r.fetchItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) fetchItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ingredient_id, name, unit, price, quantity
		 FROM order_items WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items of order %d: %w", orderID, err)
	}
	return items, nil
}

// CreateParent inserts the bare order record. The schema assigns the
// sequence-backed order number; it is written back to o along with the id.
func (r *OrderRepository) CreateParent(ctx context.Context, o *order.Order) (int64, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (status, total, item_count, placed_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, order_number`,
		o.Status, o.Total, o.ItemCount, o.PlacedAt).
		Scan(&o.ID, &o.Number)
	if err != nil {
		return 0, fmt.Errorf("creating order: %w", err)
	}
	return o.ID, nil
}

// InsertItems writes the frozen snapshot rows for an order in one batch.
func (r *OrderRepository) InsertItems(ctx context.Context, orderID int64, items []order.Item) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(
			`INSERT INTO order_items (order_id, ingredient_id, name, unit, price, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, it.IngredientID, it.Name, it.Unit, it.Price, it.Quantity)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("inserting items of order %d: %w", orderID, err)
		}
	}
	return nil
}

// UpdateStatus sets the delivery status. Returns order.ErrNotFound when the
// row does not exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("updating status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order; the schema cascades to its snapshot. Returns
// order.ErrNotFound when the row does not exist.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}
