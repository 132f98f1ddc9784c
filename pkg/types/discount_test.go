package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountCloneIsDeep(t *testing.T) {
	amount := int64(550)
	pct := decimal.NewFromInt(10)
	kind := "weekly"
	original := Discount{
		ID:           3,
		DiscountType: "percentage_off",
		DurationType: &kind,
		AmountCents:  &amount,
		Percentage:   &pct,
		ItemIDs:      []int64{1, 2},
		Items:        []ItemRef{{ID: 1, Name: "Soup", ScopeID: 9}},
	}

	clone := original.Clone()
	clone.ItemIDs[0] = 99
	clone.Items[0].Name = "Changed"
	*clone.AmountCents = 1
	*clone.DurationType = "daily"

	assert.Equal(t, []int64{1, 2}, original.ItemIDs)
	assert.Equal(t, "Soup", original.Items[0].Name)
	assert.Equal(t, int64(550), *original.AmountCents)
	assert.Equal(t, "weekly", *original.DurationType)
	assert.True(t, clone.Percentage.Equal(pct))
}

func TestDiscountLookups(t *testing.T) {
	d := Discount{ItemIDs: []int64{4}, Items: []ItemRef{{ID: 4, Name: "Tea"}}}
	assert.True(t, d.HasItem(4))
	assert.False(t, d.HasItem(5))
	ref, ok := d.Snapshot(4)
	assert.True(t, ok)
	assert.Equal(t, "Tea", ref.Name)
	_, ok = d.Snapshot(5)
	assert.False(t, ok)
	assert.Equal(t, DiscountRef{ID: 0, DiscountType: ""}, d.Ref())
}

func TestIndexItems(t *testing.T) {
	idx := IndexItems([]Item{{ID: 1, Name: "a", ScopeID: 2}, {ID: 1, Name: "b", ScopeID: 2}})
	assert.Len(t, idx, 1)
	assert.Equal(t, ItemRef{ID: 1, Name: "b", ScopeID: 2}, idx[1].Ref())
}
