package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/provision-api/internal/domain/item"
	"github.com/xenking/provision-api/internal/persist"
)

// Service encapsulates order submission and history logic.
type Service struct {
	orders Repository
	lg     *zap.Logger
	now    func() time.Time
}

// NewService creates an order Service.
func NewService(orders Repository, lg *zap.Logger) *Service {
	return &Service{orders: orders, lg: lg, now: time.Now}
}

// Submit freezes the given cart snapshot into an order: total and item count
// are computed here, at submission time, and never recomputed afterwards.
// Persistence is parent-then-children with a compensating parent delete; on
// success the stored aggregate is re-read and returned as the canonical
// result.
func (s *Service) Submit(ctx context.Context, snapshot []item.LineItem) (*Order, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]Item, len(snapshot))
	total := decimal.Zero
	count := decimal.Zero
	for i, li := range snapshot {
		if !li.Quantity.IsPositive() {
			return nil, &InvalidQuantityError{Name: li.Name}
		}

		it := Item{
			Name:     li.Name,
			Unit:     li.Unit,
			Price:    li.Price,
			Quantity: li.Quantity,
		}
		if id, ok := li.Identity.IngredientID(); ok {
			it.IngredientID = &id
		}
		items[i] = it

		total = total.Add(li.Cost())
		count = count.Add(li.Quantity)
	}

	o := &Order{
		Status:    StatusPending,
		Total:     total.Round(2),
		ItemCount: count,
		PlacedAt:  s.now(),
	}

	id, err := persist.CreateAggregate(ctx, s.lg, "order",
		func(ctx context.Context) (int64, error) {
			return s.orders.CreateParent(ctx, o)
		},
		func(ctx context.Context, orderID int64) error {
			return s.orders.InsertItems(ctx, orderID, items)
		},
		func(ctx context.Context, orderID int64) error {
			return s.orders.Delete(ctx, orderID)
		},
	)
	if err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, id)
}

// List returns the order history, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns one order with its item snapshot.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus moves an order through the delivery vocabulary. No version
// check: last write wins.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, &InvalidStatusError{Status: status}
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return s.orders.GetByID(ctx, id)
}

// Delete removes an order and its snapshot.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete order")
	}
	return nil
}
