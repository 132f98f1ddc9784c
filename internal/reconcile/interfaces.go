package reconcile

import (
	"context"

	"github.com/angelmondragon/discountsync/internal/normalize"
	"github.com/angelmondragon/discountsync/internal/selection"
	"github.com/angelmondragon/discountsync/pkg/types"
)

// ItemsAPI lists the items owned by a scope.
type ItemsAPI interface {
	List(ctx context.Context, scope int64) ([]normalize.RawItem, error)
}

// DiscountsAPI is the remote store of discounts.
type DiscountsAPI interface {
	List(ctx context.Context, scope int64) ([]normalize.RawDiscount, error)
	Create(ctx context.Context, payload types.DiscountPayload) (normalize.RawDiscount, error)
	Update(ctx context.Context, id int64, payload types.DiscountPayload) (normalize.RawDiscount, error)
	Delete(ctx context.Context, id int64) error
}

// AssignmentsAPI is the remote store of discount/item assignments.
type AssignmentsAPI interface {
	List(ctx context.Context, scope int64) ([]normalize.RawAssignment, error)
	Create(ctx context.Context, payload types.AssignmentPayload) (normalize.RawAssignment, error)
	Update(ctx context.Context, id int64, payload types.AssignmentPayload) (normalize.RawAssignment, error)
	Delete(ctx context.Context, id int64) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// AlwaysConfirm approves every prompt. Used by non-interactive hosts.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// Selector is the part of a selection context the store observes.
type Selector interface {
	Current() (int64, bool)
	Subscribe(buffer int) (<-chan selection.Event, func())
}
