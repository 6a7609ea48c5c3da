// Package order defines submitted orders: immutable line-item snapshots with
// a status and a total frozen at submission time.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations.
var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyItems = errors.New("items required")
)

// Status is the delivery state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusEnRoute   Status = "En Route"
	StatusDelivered Status = "Delivered"
)

// ValidStatus reports whether s belongs to the status vocabulary.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusEnRoute, StatusDelivered:
		return true
	default:
		return false
	}
}

// InvalidStatusError indicates a status outside the vocabulary.
type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("status %q is not one of Pending, En Route, Delivered", string(e.Status))
}

// InvalidQuantityError indicates a submitted line item with a non-positive
// quantity.
type InvalidQuantityError struct {
	Name string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %q", e.Name)
}

// Item is one frozen order line. IngredientID is nil for items that never
// resolved against the catalog (unmatched spreadsheet rows); name, unit and
// price are copies decoupled from the live ingredient, so historical orders
// ignore later price changes.
type Item struct {
	IngredientID *int64
	Name         string
	Unit         string
	Price        decimal.Decimal
	Quantity     decimal.Decimal
}

// Order is a submitted, immutable order record.
type Order struct {
	ID        int64
	Number    string
	Status    Status
	Total     decimal.Decimal
	ItemCount decimal.Decimal
	PlacedAt  time.Time
	Items     []Item
}

// Repository defines persistence operations for orders. Parent and children
// are written separately so submission can compensate on partial failure.
// CreateParent assigns the human-readable order number and returns the new
// id.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	CreateParent(ctx context.Context, o *Order) (int64, error)
	InsertItems(ctx context.Context, orderID int64, items []Item) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}
