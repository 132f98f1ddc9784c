package types

// Item is a menu item owned by a scope (restaurant). The engine only reads items.
type Item struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ScopeID int64  `json:"restaurant_id"`
}

// ItemRef is the display snapshot of an item kept on discounts and assignments.
type ItemRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ScopeID int64  `json:"restaurant_id"`
}

// Ref returns the display snapshot of the item.
func (i Item) Ref() ItemRef {
	return ItemRef{ID: i.ID, Name: i.Name, ScopeID: i.ScopeID}
}

// ItemIndex looks items up by id.
type ItemIndex map[int64]Item

// IndexItems builds an ItemIndex. Later duplicates win.
func IndexItems(items []Item) ItemIndex {
	idx := make(ItemIndex, len(items))
	for _, item := range items {
		idx[item.ID] = item
	}
	return idx
}
