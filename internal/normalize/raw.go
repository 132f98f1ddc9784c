package normalize

import (
	"github.com/shopspring/decimal"
)

// RawItem is an item or item snapshot as received from the remote store.
// Identifiers are loosely typed because the backend is not consistent about them.
type RawItem struct {
	ID           any    `json:"id"`
	Name         string `json:"name"`
	RestaurantID any    `json:"restaurant_id"`
}

// RawDiscount is a discount record as received from the Discounts API.
type RawDiscount struct {
	ID           int64            `json:"id"`
	DiscountType string           `json:"discount_type"`
	DurationType *string          `json:"duration_type"`
	AppliesTo    *string          `json:"applies_to"`
	DayOfWeek    *string          `json:"day_of_week"`
	StartTime    *string          `json:"start_time"`
	EndTime      *string          `json:"end_time"`
	StartAt      *string          `json:"start_at"`
	EndAt        *string          `json:"end_at"`
	Active       bool             `json:"active"`
	AmountCents  *int64           `json:"amount"`
	Percentage   *decimal.Decimal `json:"percentage"`
	ItemIDs      []any            `json:"item_ids"`
	Items        []RawItem        `json:"items"`
}

// RawDiscountRef is the discount snapshot nested in an assignment record.
type RawDiscountRef struct {
	ID           int64  `json:"id"`
	DiscountType string `json:"discount_type"`
}

// RawAssignment is an assignment record as received from the Assignments API.
type RawAssignment struct {
	ID         int64           `json:"id"`
	ItemID     int64           `json:"item_id"`
	DiscountID int64           `json:"discount_id"`
	Item       *RawItem        `json:"item"`
	Discount   *RawDiscountRef `json:"discount"`
}
