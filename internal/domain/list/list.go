// Package list defines reusable order templates: a named set of line items
// persisted as a parent record plus children.
package list

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for list operations.
var (
	ErrNotFound  = errors.New("list not found")
	ErrEmptyName = errors.New("list name required")
)

// InvalidItemError indicates a list item with a non-positive quantity or an
// unknown ingredient reference.
type InvalidItemError struct {
	IngredientID int64
	Reason       string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("list item for ingredient %d invalid: %s", e.IngredientID, e.Reason)
}

// Item is one list entry: an ingredient reference plus a quantity. Name, unit
// and price are joined from the live catalog on read; unlike order snapshots
// they track catalog edits.
type Item struct {
	IngredientID int64
	Name         string
	Unit         string
	Price        decimal.Decimal
	Quantity     decimal.Decimal
}

// List is a named, reusable template of line items.
type List struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Items     []Item
}

// ItemInput is the write-side shape of a list entry.
type ItemInput struct {
	IngredientID int64
	Quantity     decimal.Decimal
}

// Repository defines the storage operations the service composes. Parent and
// children are written separately so creation can compensate on partial
// failure.
type Repository interface {
	List(ctx context.Context) ([]List, error)
	GetByID(ctx context.Context, id int64) (*List, error)
	CreateParent(ctx context.Context, name string) (int64, error)
	InsertItems(ctx context.Context, listID int64, items []ItemInput) error
	UpdateParent(ctx context.Context, id int64, name string) error
	DeleteItems(ctx context.Context, listID int64) error
	Delete(ctx context.Context, id int64) error
}
