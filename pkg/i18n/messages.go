package i18n

// Message pairs a translation key with the literal text shown when no translation exists.
type Message struct {
	Key      string
	Fallback string
}

// Render translates the message with tr, tolerating a nil translator.
func (m Message) Render(tr Translator, vars map[string]any) string {
	if tr == nil {
		return Interpolate(m.Fallback, vars)
	}
	return tr.Translate(m.Key, m.Fallback, vars)
}

var (
	InvalidAmount              = Message{"errors.invalid_amount", "Amount must be a valid non-negative number"}
	InvalidPercentage          = Message{"errors.invalid_percentage", "Percentage must be a valid number"}
	InvalidIdentifier          = Message{"errors.invalid_identifier", "Invalid selection"}
	DiscountTypeRequired       = Message{"errors.discount_type_required", "Discount type is required"}
	DiscountItemsRequired      = Message{"errors.discount_items_required", "Select at least one item"}
	AssignmentItemRequired     = Message{"errors.assignment_item_required", "Select an item"}
	AssignmentDiscountRequired = Message{"errors.assignment_discount_required", "Select a discount"}
	AssignmentDuplicate        = Message{"errors.assignment_duplicate", "This discount is already assigned to the item"}
	AssignmentOutOfScope       = Message{"errors.assignment_out_of_scope", "The item does not belong to the selected restaurant"}
	DiscountNotFound           = Message{"errors.discount_not_found", "Discount {id} not found"}
	AssignmentNotFound         = Message{"errors.assignment_not_found", "Assignment {id} not found"}
	NoScopeSelected            = Message{"errors.no_scope", "Select a restaurant first"}
	LoadFailed                 = Message{"errors.load_failed", "Could not load discounts"}
	RefreshFailed              = Message{"errors.refresh_failed", "Could not refresh discounts"}
	RemoteFailed               = Message{"errors.remote", "The request failed. Please try again."}

	ConfirmDeleteDiscount   = Message{"confirm.delete_discount", "Delete discount {id}?"}
	ConfirmDeleteAssignment = Message{"confirm.delete_assignment", "Remove this discount from {item}?"}

	StatusLoaded            = Message{"status.loaded", "Discounts loaded"}
	StatusDiscountCreated   = Message{"status.discount_created", "Discount created"}
	StatusDiscountUpdated   = Message{"status.discount_updated", "Discount updated"}
	StatusDiscountDeleted   = Message{"status.discount_deleted", "Discount deleted"}
	StatusAssignmentCreated = Message{"status.assignment_created", "Discount assigned"}
	StatusAssignmentUpdated = Message{"status.assignment_updated", "Assignment updated"}
	StatusAssignmentDeleted = Message{"status.assignment_deleted", "Assignment removed"}
)

var all = []Message{
	InvalidAmount, InvalidPercentage, InvalidIdentifier, DiscountTypeRequired,
	DiscountItemsRequired, AssignmentItemRequired, AssignmentDiscountRequired,
	AssignmentDuplicate, AssignmentOutOfScope, DiscountNotFound, AssignmentNotFound,
	NoScopeSelected, LoadFailed, RefreshFailed, RemoteFailed,
	ConfirmDeleteDiscount, ConfirmDeleteAssignment,
	StatusLoaded, StatusDiscountCreated, StatusDiscountUpdated, StatusDiscountDeleted,
	StatusAssignmentCreated, StatusAssignmentUpdated, StatusAssignmentDeleted,
}

// Defaults returns the fallback text of every message keyed by translation key.
func Defaults() map[string]string {
	out := make(map[string]string, len(all))
	for _, m := range all {
		out[m.Key] = m.Fallback
	}
	return out
}
