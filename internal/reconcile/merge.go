package reconcile

import (
	"slices"

	"github.com/angelmondragon/discountsync/pkg/types"
)

// The helpers below never modify their inputs; callers swap in the returned slices.

func upsertDiscount(list []types.Discount, d types.Discount) []types.Discount {
	out := slices.Clone(list)
	for i := range out {
		if out[i].ID == d.ID {
			out[i] = d
			return out
		}
	}
	return append(out, d)
}

// removeDiscount drops the discount and every assignment referencing it.
func removeDiscount(discounts []types.Discount, assignments []types.Assignment, id int64) ([]types.Discount, []types.Assignment) {
	keptDiscounts := slices.DeleteFunc(slices.Clone(discounts), func(d types.Discount) bool { return d.ID == id })
	keptAssignments := slices.DeleteFunc(slices.Clone(assignments), func(a types.Assignment) bool { return a.DiscountID == id })
	return keptDiscounts, keptAssignments
}

func upsertAssignment(list []types.Assignment, a types.Assignment) []types.Assignment {
	out := slices.Clone(list)
	for i := range out {
		if out[i].ID == a.ID {
			out[i] = a
			return out
		}
	}
	return append(out, a)
}

func removeAssignment(list []types.Assignment, id int64) []types.Assignment {
	return slices.DeleteFunc(slices.Clone(list), func(a types.Assignment) bool { return a.ID == id })
}

func findAssignment(list []types.Assignment, id int64) (types.Assignment, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return types.Assignment{}, false
}

// mergeAssignment links the assignment's item into its owning discount.
func mergeAssignment(discounts []types.Discount, a types.Assignment) []types.Discount {
	i := slices.IndexFunc(discounts, func(d types.Discount) bool { return d.ID == a.DiscountID })
	if i < 0 {
		return discounts
	}
	d := discounts[i]
	_, hasSnapshot := d.Snapshot(a.ItemID)
	if d.HasItem(a.ItemID) && hasSnapshot {
		return discounts
	}

	merged := d.Clone()
	if !merged.HasItem(a.ItemID) {
		merged.ItemIDs = append(merged.ItemIDs, a.ItemID)
	}
	if !hasSnapshot {
		ref := a.Item
		ref.ID = a.ItemID
		merged.Items = append(merged.Items, ref)
	}
	out := slices.Clone(discounts)
	out[i] = merged
	return out
}

// detachAssignment unlinks the assignment's item from its owning discount
// unless another assignment in remaining still links the same pair.
func detachAssignment(discounts []types.Discount, remaining []types.Assignment, a types.Assignment) []types.Discount {
	if linkSurvives(remaining, a.Link(), a.ID) {
		return discounts
	}
	i := slices.IndexFunc(discounts, func(d types.Discount) bool { return d.ID == a.DiscountID })
	if i < 0 {
		return discounts
	}
	detached := discounts[i].Clone()
	detached.ItemIDs = slices.DeleteFunc(detached.ItemIDs, func(id int64) bool { return id == a.ItemID })
	detached.Items = slices.DeleteFunc(detached.Items, func(ref types.ItemRef) bool { return ref.ID == a.ItemID })
	out := slices.Clone(discounts)
	out[i] = detached
	return out
}

// linkSurvives reports whether an assignment other than excludeID links the pair.
func linkSurvives(assignments []types.Assignment, link types.Link, excludeID int64) bool {
	return slices.ContainsFunc(assignments, func(a types.Assignment) bool {
		return a.ID != excludeID && a.Link() == link
	})
}

func linkedBy(assignments []types.Assignment, link types.Link) (types.Assignment, bool) {
	i := slices.IndexFunc(assignments, func(a types.Assignment) bool { return a.Link() == link })
	if i < 0 {
		return types.Assignment{}, false
	}
	return assignments[i], true
}
