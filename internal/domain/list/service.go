package list

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/provision-api/internal/persist"
)

// Service encapsulates list lifecycle logic on top of the repository.
type Service struct {
	lists Repository
	lg    *zap.Logger
}

// NewService creates a list Service.
func NewService(lists Repository, lg *zap.Logger) *Service {
	return &Service{lists: lists, lg: lg}
}

// List returns all saved lists, newest first, with catalog-joined items.
func (s *Service) List(ctx context.Context) ([]List, error) {
	lists, err := s.lists.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list lists")
	}
	return lists, nil
}

// Get returns one list with its items.
func (s *Service) Get(ctx context.Context, id int64) (*List, error) {
	return s.lists.GetByID(ctx, id)
}

// Create persists a new list with its items: parent first, children second,
// compensating parent delete on child failure. On success the full aggregate
// is re-read from storage and returned as the canonical result.
func (s *Service) Create(ctx context.Context, name string, items []ItemInput) (*List, error) {
	if err := validate(name, items); err != nil {
		return nil, err
	}

	var writeChildren func(ctx context.Context, listID int64) error
	if len(items) > 0 {
		writeChildren = func(ctx context.Context, listID int64) error {
			return s.lists.InsertItems(ctx, listID, items)
		}
	}

	id, err := persist.CreateAggregate(ctx, s.lg, "list",
		func(ctx context.Context) (int64, error) {
			return s.lists.CreateParent(ctx, name)
		},
		writeChildren,
		func(ctx context.Context, listID int64) error {
			return s.lists.Delete(ctx, listID)
		},
	)
	if err != nil {
		return nil, err
	}

	return s.lists.GetByID(ctx, id)
}

// Update replaces a list wholesale: parent fields first, then delete every
// existing child and insert the new set. There is no diffing and no version
// check; last write wins.
func (s *Service) Update(ctx context.Context, id int64, name string, items []ItemInput) (*List, error) {
	if err := validate(name, items); err != nil {
		return nil, err
	}

	if err := s.lists.UpdateParent(ctx, id, name); err != nil {
		return nil, errors.Wrap(err, "update list")
	}
	if err := s.lists.DeleteItems(ctx, id); err != nil {
		return nil, errors.Wrap(err, "delete list items")
	}
	if len(items) > 0 {
		if err := s.lists.InsertItems(ctx, id, items); err != nil {
			return nil, errors.Wrap(err, "insert list items")
		}
	}

	return s.lists.GetByID(ctx, id)
}

// Delete removes a list and, via the schema's cascade, its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.lists.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete list")
	}
	return nil
}

func validate(name string, items []ItemInput) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, it := range items {
		if !it.Quantity.IsPositive() {
			return &InvalidItemError{IngredientID: it.IngredientID, Reason: "quantity must be greater than 0"}
		}
	}
	return nil
}
