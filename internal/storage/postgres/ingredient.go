package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/provision-api/internal/domain/ingredient"
)

var _ ingredient.Repository = (*IngredientRepository)(nil)

// IngredientRepository implements ingredient.Repository backed by PostgreSQL.
type IngredientRepository struct {
	pool *pgxpool.Pool
}

// NewIngredientRepository returns an IngredientRepository that uses the given
// pool.
func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{pool: pool}
}

// pgUniqueViolation is the Postgres error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// List returns the full catalog ordered by name.
func (r *IngredientRepository) List(ctx context.Context) ([]ingredient.Ingredient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, unit, price, created_at FROM ingredients ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	defer rows.Close()

	var out []ingredient.Ingredient
	for rows.Next() {
		var ing ingredient.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.Price, &ing.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		out = append(out, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return out, nil
}

// GetByID returns a single ingredient. Returns ingredient.ErrNotFound when no
// matching row exists.
func (r *IngredientRepository) GetByID(ctx context.Context, id int64) (*ingredient.Ingredient, error) {
	var ing ingredient.Ingredient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, unit, price, created_at FROM ingredients WHERE id = $1`, id).
		Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.Price, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ingredient.ErrNotFound
		}
		return nil, fmt.Errorf("getting ingredient %d: %w", id, err)
	}
	return &ing, nil
}

// Create inserts a new catalog row and fills in the assigned id and
// timestamp. Returns ingredient.ErrNameTaken when a row with the same name
// already exists, compared case-insensitively.
func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ingredients (name, unit, price) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		ing.Name, ing.Unit, ing.Price).
		Scan(&ing.ID, &ing.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating ingredient %q: %w", ing.Name, ingredient.ErrNameTaken)
		}
		return fmt.Errorf("creating ingredient %q: %w", ing.Name, err)
	}
	return nil
}

// Upsert inserts a catalog row or, when a row with the same name already
// exists, refreshes its unit and price. Names are matched case-insensitively.
// Used by the seed and bulk ingest tools.
func (r *IngredientRepository) Upsert(ctx context.Context, ing *ingredient.Ingredient) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ingredients (name, unit, price) VALUES ($1, $2, $3)
		 ON CONFLICT (LOWER(name)) DO UPDATE SET unit = EXCLUDED.unit, price = EXCLUDED.price
		 RETURNING id, created_at`,
		ing.Name, ing.Unit, ing.Price).
		Scan(&ing.ID, &ing.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting ingredient %q: %w", ing.Name, err)
	}
	return nil
}

// Update replaces name, unit and price. Returns ingredient.ErrNotFound when
// the row does not exist and ingredient.ErrNameTaken when the new name
// collides with another row.
func (r *IngredientRepository) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ingredients SET name = $2, unit = $3, price = $4 WHERE id = $1`,
		ing.ID, ing.Name, ing.Unit, ing.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating ingredient %d: %w", ing.ID, ingredient.ErrNameTaken)
		}
		return fmt.Errorf("updating ingredient %d: %w", ing.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ingredient.ErrNotFound
	}
	return nil
}

// Delete removes a catalog row. Returns ingredient.ErrNotFound when the row
// does not exist.
func (r *IngredientRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ingredient %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ingredient.ErrNotFound
	}
	return nil
}
