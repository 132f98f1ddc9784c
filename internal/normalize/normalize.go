package normalize

import (
	"fmt"

	"github.com/angelmondragon/discountsync/pkg/types"
	"go.uber.org/multierr"
)

// Items coerces raw items into canonical ones. Rows whose id or scope
// cannot be resolved are dropped.
func Items(raw []RawItem) []types.Item {
	out := make([]types.Item, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for _, r := range raw {
		ref, ok := itemRef(r)
		if !ok {
			continue
		}
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, types.Item{ID: ref.ID, Name: ref.Name, ScopeID: ref.ScopeID})
	}
	return out
}

// Discounts shapes raw discount records into canonical discounts. Entries that
// had to be discarded are reported through the returned error; the discounts
// are usable either way.
func Discounts(raw []RawDiscount, items []types.Item) ([]types.Discount, error) {
	idx := types.IndexItems(items)
	out := make([]types.Discount, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	var errs error

	for _, r := range raw {
		if _, dup := seen[r.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("discount %d: duplicate record", r.ID))
			continue
		}
		seen[r.ID] = struct{}{}

		d := types.Discount{
			ID:           r.ID,
			DiscountType: r.DiscountType,
			DurationType: r.DurationType,
			AppliesTo:    r.AppliesTo,
			DayOfWeek:    r.DayOfWeek,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			StartAt:      r.StartAt,
			EndAt:        r.EndAt,
			Active:       r.Active,
			AmountCents:  r.AmountCents,
			Percentage:   r.Percentage,
			ItemIDs:      make([]int64, 0, len(r.ItemIDs)),
			Items:        make([]types.ItemRef, 0, len(r.Items)),
		}
		for i, v := range r.ItemIDs {
			id, ok := CoerceID(v)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("discount %d: item_ids[%d] %v is not numeric", r.ID, i, v))
				continue
			}
			d.ItemIDs = append(d.ItemIDs, id)
		}
		for i, item := range r.Items {
			ref, ok := itemRef(item)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("discount %d: items[%d] has an unresolvable id or scope", r.ID, i))
				continue
			}
			d.Items = append(d.Items, ref)
		}
		out = append(out, canonicalize(d, idx))
	}
	return out, errs
}

// Assignments shapes raw assignment records and keeps only those whose linked
// item belongs to scope.
func Assignments(raw []RawAssignment, scope int64) ([]types.Assignment, error) {
	out := make([]types.Assignment, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	var errs error

	for _, r := range raw {
		if r.Item == nil {
			errs = multierr.Append(errs, fmt.Errorf("assignment %d: no linked item", r.ID))
			continue
		}
		scopeID, ok := CoerceID(r.Item.RestaurantID)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("assignment %d: item scope %v is not numeric", r.ID, r.Item.RestaurantID))
			continue
		}
		if scopeID != scope {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}

		itemID := r.ItemID
		if itemID == 0 {
			if id, ok := CoerceID(r.Item.ID); ok {
				itemID = id
			}
		}
		if itemID == 0 {
			errs = multierr.Append(errs, fmt.Errorf("assignment %d: no item id", r.ID))
			continue
		}

		discount := types.DiscountRef{ID: r.DiscountID}
		if r.Discount != nil {
			discount.DiscountType = r.Discount.DiscountType
			if discount.ID == 0 {
				discount.ID = r.Discount.ID
			}
		}
		if discount.ID == 0 {
			errs = multierr.Append(errs, fmt.Errorf("assignment %d: no discount id", r.ID))
			continue
		}

		seen[r.ID] = struct{}{}
		out = append(out, types.Assignment{
			ID:         r.ID,
			ItemID:     itemID,
			DiscountID: discount.ID,
			Item:       types.ItemRef{ID: itemID, Name: r.Item.Name, ScopeID: scopeID},
			Discount:   discount,
		})
	}
	return out, errs
}

// Canonicalize restores the item link invariant on an already typed discount:
// ids are deduplicated, snapshots without a backing id are pruned and missing
// snapshots are synthesized from items when possible.
func Canonicalize(d types.Discount, items []types.Item) types.Discount {
	return canonicalize(d, types.IndexItems(items))
}

// CanonicalDiscounts canonicalizes every discount and drops duplicate ids.
func CanonicalDiscounts(list []types.Discount, items []types.Item) []types.Discount {
	idx := types.IndexItems(items)
	out := make([]types.Discount, 0, len(list))
	seen := make(map[int64]struct{}, len(list))
	for _, d := range list {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, canonicalize(d, idx))
	}
	return out
}

// CanonicalAssignments drops assignments outside scope and duplicate ids.
func CanonicalAssignments(list []types.Assignment, scope int64) []types.Assignment {
	out := make([]types.Assignment, 0, len(list))
	seen := make(map[int64]struct{}, len(list))
	for _, a := range list {
		if a.Item.ScopeID != scope {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

func canonicalize(d types.Discount, idx types.ItemIndex) types.Discount {
	out := d.Clone()

	ids := make([]int64, 0, len(d.ItemIDs))
	present := make(map[int64]struct{}, len(d.ItemIDs))
	for _, id := range d.ItemIDs {
		if _, dup := present[id]; dup {
			continue
		}
		present[id] = struct{}{}
		ids = append(ids, id)
	}

	refs := make([]types.ItemRef, 0, len(ids))
	covered := make(map[int64]struct{}, len(ids))
	for _, ref := range d.Items {
		if _, ok := present[ref.ID]; !ok {
			continue
		}
		if _, dup := covered[ref.ID]; dup {
			continue
		}
		covered[ref.ID] = struct{}{}
		refs = append(refs, ref)
	}
	for _, id := range ids {
		if _, ok := covered[id]; ok {
			continue
		}
		if item, ok := idx[id]; ok {
			covered[id] = struct{}{}
			refs = append(refs, item.Ref())
		}
	}

	out.ItemIDs = ids
	out.Items = refs
	return out
}

func itemRef(r RawItem) (types.ItemRef, bool) {
	id, ok := CoerceID(r.ID)
	if !ok {
		return types.ItemRef{}, false
	}
	scope, ok := CoerceID(r.RestaurantID)
	if !ok {
		return types.ItemRef{}, false
	}
	return types.ItemRef{ID: id, Name: r.Name, ScopeID: scope}, true
}
