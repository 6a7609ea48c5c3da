// Package persist implements the two-step aggregate write used when an order
// or list is stored together with its line items: parent first, children
// second, with a compensating parent delete when the child write fails.
package persist

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// State tracks where a create operation is in its lifecycle.
type State int

const (
	StatePending State = iota
	StateParentWritten
	StateChildrenWritten
	StateRollingBack
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateParentWritten:
		return "parent_written"
	case StateChildrenWritten:
		return "children_written"
	case StateRollingBack:
		return "rolling_back"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OrphanedParentError reports that a child write failed and the compensating
// parent delete failed too, leaving an empty parent record behind. Both
// errors are carried so the caller can surface the orphan distinctly instead
// of it being swallowed.
type OrphanedParentError struct {
	Entity        string
	ParentID      int64
	Cause         error
	CompensateErr error
}

func (e *OrphanedParentError) Error() string {
	return fmt.Sprintf("%s %d orphaned: child write failed (%v) and compensating delete failed (%v)",
		e.Entity, e.ParentID, e.Cause, e.CompensateErr)
}

func (e *OrphanedParentError) Unwrap() error { return e.Cause }

// CreateAggregate writes a parent record, then its children tagged with the
// returned parent id. On a child-write failure the parent is deleted as
// compensation before the error is surfaced; if that delete fails too the
// caller receives an *OrphanedParentError. writeChildren may be nil when the
// aggregate has no children to store.
func CreateAggregate(
	ctx context.Context,
	lg *zap.Logger,
	entity string,
	writeParent func(ctx context.Context) (int64, error),
	writeChildren func(ctx context.Context, parentID int64) error,
	deleteParent func(ctx context.Context, parentID int64) error,
) (int64, error) {
	parentID, err := writeParent(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", entity)
	}

	if writeChildren != nil {
		if err := writeChildren(ctx, parentID); err != nil {
			lg.Warn("child write failed, deleting parent",
				zap.String("entity", entity),
				zap.Int64("parent_id", parentID),
				zap.Stringer("state", StateRollingBack),
				zap.Error(err),
			)

			if delErr := deleteParent(ctx, parentID); delErr != nil {
				lg.Warn("compensating delete failed, parent orphaned",
					zap.String("entity", entity),
					zap.Int64("parent_id", parentID),
					zap.Stringer("state", StateFailed),
					zap.Error(delErr),
				)
				return 0, &OrphanedParentError{
					Entity:        entity,
					ParentID:      parentID,
					Cause:         err,
					CompensateErr: delErr,
				}
			}

			return 0, errors.Wrapf(err, "create %s items", entity)
		}
	}

	return parentID, nil
}
