package reconcile

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/angelmondragon/discountsync/internal/normalize"
	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/metrics"
	"github.com/angelmondragon/discountsync/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory remote store. Item lists can be held per scope
// to simulate slow responses.
type fakeBackend struct {
	mu          sync.Mutex
	items       map[int64][]normalize.RawItem
	discounts   []normalize.RawDiscount
	assignments []normalize.RawAssignment
	nextID      int64
	listErr     error
	mutateErr   error
	calls       map[string]int
	gates       map[int64]chan struct{}
	entered     chan int64

	lastDiscountPayload *types.DiscountPayload
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		items: map[int64][]normalize.RawItem{
			10: {
				{ID: 1, Name: "Burger", RestaurantID: 10},
				{ID: 2, Name: "Fries", RestaurantID: 10},
				{ID: 7, Name: "Shake", RestaurantID: 10},
				{ID: 8, Name: "Salad", RestaurantID: 10},
			},
			11: {
				{ID: 20, Name: "Pizza", RestaurantID: "11"},
			},
		},
		discounts: []normalize.RawDiscount{
			{ID: 3, DiscountType: "percentage_off", Active: true, ItemIDs: []any{float64(1)}},
			{ID: 4, DiscountType: "amount_off", ItemIDs: []any{"8"}},
		},
		assignments: []normalize.RawAssignment{
			{ID: 1, ItemID: 1, DiscountID: 3, Item: &normalize.RawItem{ID: 1, Name: "Burger", RestaurantID: 10}},
			{ID: 2, ItemID: 20, DiscountID: 3, Item: &normalize.RawItem{ID: 20, Name: "Pizza", RestaurantID: 11}},
		},
		nextID:  100,
		calls:   map[string]int{},
		gates:   map[int64]chan struct{}{},
		entered: make(chan int64, 16),
	}
}

// hold blocks the next item listing of scope until the returned func is
// called. Later listings pass through.
func (b *fakeBackend) hold(scope int64) func() {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[scope] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, scope)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *fakeBackend) callCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *fakeBackend) setMutateErr(err error) {
	b.mu.Lock()
	b.mutateErr = err
	b.mu.Unlock()
}

func (b *fakeBackend) itemScope(id int64) (normalize.RawItem, bool) {
	for _, list := range b.items {
		for _, item := range list {
			if itemID, _ := normalize.CoerceID(item.ID); itemID == id {
				return item, true
			}
		}
	}
	return normalize.RawItem{}, false
}

// relink mirrors the server keeping discount item lists in sync with assignments.
func (b *fakeBackend) relink(itemID, discountID int64, linked bool) {
	for i := range b.discounts {
		if b.discounts[i].ID != discountID {
			continue
		}
		ids := b.discounts[i].ItemIDs
		has := slices.ContainsFunc(ids, func(v any) bool { id, _ := normalize.CoerceID(v); return id == itemID })
		switch {
		case linked && !has:
			b.discounts[i].ItemIDs = append(slices.Clone(ids), itemID)
		case !linked && has:
			for _, a := range b.assignments {
				if a.ItemID == itemID && a.DiscountID == discountID {
					return
				}
			}
			b.discounts[i].ItemIDs = slices.DeleteFunc(slices.Clone(ids), func(v any) bool {
				id, _ := normalize.CoerceID(v)
				return id == itemID
			})
		}
	}
}

type fakeItemsAPI struct{ b *fakeBackend }

func (a fakeItemsAPI) List(ctx context.Context, scope int64) ([]normalize.RawItem, error) {
	b := a.b
	b.mu.Lock()
	b.calls["items.list"]++
	gate := b.gates[scope]
	delete(b.gates, scope)
	b.mu.Unlock()

	if gate != nil {
		select {
		case b.entered <- scope:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return slices.Clone(b.items[scope]), nil
}

type fakeDiscountsAPI struct{ b *fakeBackend }

func (a fakeDiscountsAPI) List(_ context.Context, _ int64) ([]normalize.RawDiscount, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["discounts.list"]++
	out := make([]normalize.RawDiscount, len(b.discounts))
	for i, d := range b.discounts {
		out[i] = cloneRawDiscount(d)
	}
	return out, nil
}

func (a fakeDiscountsAPI) Create(_ context.Context, payload types.DiscountPayload) (normalize.RawDiscount, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["discounts.create"]++
	if b.mutateErr != nil {
		return normalize.RawDiscount{}, b.mutateErr
	}
	b.nextID++
	p := payload
	b.lastDiscountPayload = &p
	d := rawFromPayload(b.nextID, payload)
	b.discounts = append(b.discounts, d)
	return cloneRawDiscount(d), nil
}

func (a fakeDiscountsAPI) Update(_ context.Context, id int64, payload types.DiscountPayload) (normalize.RawDiscount, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["discounts.update"]++
	if b.mutateErr != nil {
		return normalize.RawDiscount{}, b.mutateErr
	}
	for i := range b.discounts {
		if b.discounts[i].ID == id {
			b.discounts[i] = rawFromPayload(id, payload)
			return cloneRawDiscount(b.discounts[i]), nil
		}
	}
	return normalize.RawDiscount{}, pkgerrors.New(pkgerrors.CodeDependency, "Discount not found")
}

func (a fakeDiscountsAPI) Delete(_ context.Context, id int64) error {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["discounts.delete"]++
	if b.mutateErr != nil {
		return b.mutateErr
	}
	b.discounts = slices.DeleteFunc(b.discounts, func(d normalize.RawDiscount) bool { return d.ID == id })
	b.assignments = slices.DeleteFunc(b.assignments, func(a normalize.RawAssignment) bool { return a.DiscountID == id })
	return nil
}

type fakeAssignmentsAPI struct{ b *fakeBackend }

func (a fakeAssignmentsAPI) List(_ context.Context, _ int64) ([]normalize.RawAssignment, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["assignments.list"]++
	return slices.Clone(b.assignments), nil
}

func (a fakeAssignmentsAPI) Create(_ context.Context, payload types.AssignmentPayload) (normalize.RawAssignment, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["assignments.create"]++
	if b.mutateErr != nil {
		return normalize.RawAssignment{}, b.mutateErr
	}
	b.nextID++
	rec := normalize.RawAssignment{ID: b.nextID, ItemID: payload.ItemID, DiscountID: payload.DiscountID}
	if item, ok := b.itemScope(payload.ItemID); ok {
		rec.Item = &item
	}
	b.assignments = append(b.assignments, rec)
	b.relink(payload.ItemID, payload.DiscountID, true)
	return rec, nil
}

func (a fakeAssignmentsAPI) Update(_ context.Context, id int64, payload types.AssignmentPayload) (normalize.RawAssignment, error) {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["assignments.update"]++
	if b.mutateErr != nil {
		return normalize.RawAssignment{}, b.mutateErr
	}
	for i := range b.assignments {
		if b.assignments[i].ID != id {
			continue
		}
		prev := b.assignments[i]
		rec := normalize.RawAssignment{ID: id, ItemID: payload.ItemID, DiscountID: payload.DiscountID}
		if item, ok := b.itemScope(payload.ItemID); ok {
			rec.Item = &item
		}
		b.assignments[i] = rec
		b.relink(prev.ItemID, prev.DiscountID, false)
		b.relink(rec.ItemID, rec.DiscountID, true)
		return rec, nil
	}
	return normalize.RawAssignment{}, pkgerrors.New(pkgerrors.CodeDependency, "Assignment not found")
}

func (a fakeAssignmentsAPI) Delete(_ context.Context, id int64) error {
	b := a.b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["assignments.delete"]++
	if b.mutateErr != nil {
		return b.mutateErr
	}
	i := slices.IndexFunc(b.assignments, func(a normalize.RawAssignment) bool { return a.ID == id })
	if i < 0 {
		return nil
	}
	prev := b.assignments[i]
	b.assignments = slices.Delete(b.assignments, i, i+1)
	b.relink(prev.ItemID, prev.DiscountID, false)
	return nil
}

func rawFromPayload(id int64, p types.DiscountPayload) normalize.RawDiscount {
	ids := make([]any, len(p.ItemIDs))
	for i, itemID := range p.ItemIDs {
		ids[i] = itemID
	}
	return normalize.RawDiscount{
		ID:           id,
		DiscountType: p.DiscountType,
		DurationType: p.DurationType,
		Active:       p.Active,
		AmountCents:  p.AmountCents,
		Percentage:   p.Percentage,
		ItemIDs:      ids,
	}
}

func cloneRawDiscount(d normalize.RawDiscount) normalize.RawDiscount {
	d.ItemIDs = slices.Clone(d.ItemIDs)
	d.Items = slices.Clone(d.Items)
	return d
}

type storeOption func(*StoreParams)

func withConfirmer(c Confirmer) storeOption {
	return func(p *StoreParams) { p.Confirmer = c }
}

func newTestStore(t *testing.T, b *fakeBackend, opts ...storeOption) (*Store, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	params := StoreParams{
		Items:       fakeItemsAPI{b: b},
		Discounts:   fakeDiscountsAPI{b: b},
		Assignments: fakeAssignmentsAPI{b: b},
		Metrics:     metrics.NewReconcileMetrics(reg),
	}
	for _, opt := range opts {
		opt(&params)
	}
	store, err := NewStore(params)
	require.NoError(t, err)
	t.Cleanup(store.Wait)
	return store, reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, pair := range pairs {
		if want[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}

func ptr[T any](v T) *T { return &v }
