package types

// Assignment binds one discount to one item.
type Assignment struct {
	ID         int64       `json:"id"`
	ItemID     int64       `json:"item_id"`
	DiscountID int64       `json:"discount_id"`
	Item       ItemRef     `json:"item"`
	Discount   DiscountRef `json:"discount"`
}

// Link returns the (item, discount) pair the assignment establishes.
func (a Assignment) Link() Link {
	return Link{ItemID: a.ItemID, DiscountID: a.DiscountID}
}

// Link identifies a discount/item pair.
type Link struct {
	ItemID     int64
	DiscountID int64
}

// AssignmentPayload is the body sent to the Assignments API on create and update.
type AssignmentPayload struct {
	ItemID     int64 `json:"item_id" validate:"required,gt=0"`
	DiscountID int64 `json:"discount_id" validate:"required,gt=0"`
}
