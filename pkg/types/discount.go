package types

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Discount is the canonical discount shape held by the reconciliation store.
type Discount struct {
	ID           int64            `json:"id"`
	DiscountType string           `json:"discount_type"`
	DurationType *string          `json:"duration_type,omitempty"`
	AppliesTo    *string          `json:"applies_to,omitempty"`
	DayOfWeek    *string          `json:"day_of_week,omitempty"`
	StartTime    *string          `json:"start_time,omitempty"`
	EndTime      *string          `json:"end_time,omitempty"`
	StartAt      *string          `json:"start_at,omitempty"`
	EndAt        *string          `json:"end_at,omitempty"`
	Active       bool             `json:"active"`
	AmountCents  *int64           `json:"amount,omitempty"`
	Percentage   *decimal.Decimal `json:"percentage,omitempty"`
	ItemIDs      []int64          `json:"item_ids"`
	Items        []ItemRef        `json:"items"`
}

// DiscountRef is the display snapshot of a discount kept on assignments.
type DiscountRef struct {
	ID           int64  `json:"id"`
	DiscountType string `json:"discount_type"`
}

// Ref returns the display snapshot of the discount.
func (d Discount) Ref() DiscountRef {
	return DiscountRef{ID: d.ID, DiscountType: d.DiscountType}
}

// HasItem reports whether itemID is linked to the discount.
func (d Discount) HasItem(itemID int64) bool {
	return slices.Contains(d.ItemIDs, itemID)
}

// Snapshot returns the display snapshot for itemID, if present.
func (d Discount) Snapshot(itemID int64) (ItemRef, bool) {
	for _, ref := range d.Items {
		if ref.ID == itemID {
			return ref, true
		}
	}
	return ItemRef{}, false
}

// Clone returns a deep copy so callers never share backing arrays with the store.
func (d Discount) Clone() Discount {
	out := d
	out.DurationType = cloneString(d.DurationType)
	out.AppliesTo = cloneString(d.AppliesTo)
	out.DayOfWeek = cloneString(d.DayOfWeek)
	out.StartTime = cloneString(d.StartTime)
	out.EndTime = cloneString(d.EndTime)
	out.StartAt = cloneString(d.StartAt)
	out.EndAt = cloneString(d.EndAt)
	if d.AmountCents != nil {
		v := *d.AmountCents
		out.AmountCents = &v
	}
	if d.Percentage != nil {
		v := *d.Percentage
		out.Percentage = &v
	}
	out.ItemIDs = slices.Clone(d.ItemIDs)
	out.Items = slices.Clone(d.Items)
	return out
}

// DiscountPayload is the body sent to the Discounts API on create and update.
type DiscountPayload struct {
	DiscountType string           `json:"discount_type" validate:"required"`
	DurationType *string          `json:"duration_type"`
	AppliesTo    *string          `json:"applies_to"`
	DayOfWeek    *string          `json:"day_of_week"`
	StartTime    *string          `json:"start_time"`
	EndTime      *string          `json:"end_time"`
	StartAt      *string          `json:"start_at"`
	EndAt        *string          `json:"end_at"`
	Active       bool             `json:"active"`
	AmountCents  *int64           `json:"amount" validate:"omitempty,min=0"`
	Percentage   *decimal.Decimal `json:"percentage"`
	ItemIDs      []int64          `json:"item_ids" validate:"min=1,dive,gt=0"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
