package reconcile

import (
	"errors"
	"slices"
	"sync"

	"github.com/angelmondragon/discountsync/internal/generation"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/logger"
	"github.com/angelmondragon/discountsync/pkg/metrics"
	"github.com/angelmondragon/discountsync/pkg/types"
)

// StoreParams wires the store's collaborators. The three APIs are required.
type StoreParams struct {
	Items       ItemsAPI
	Discounts   DiscountsAPI
	Assignments AssignmentsAPI
	Confirmer   Confirmer
	Translator  i18n.Translator
	Logger      *logger.Logger
	Metrics     *metrics.ReconcileMetrics
	Generations *generation.Controller
}

// Store owns the discount and assignment collections of the active scope.
type Store struct {
	items       ItemsAPI
	discounts   DiscountsAPI
	assignments AssignmentsAPI
	confirm     Confirmer
	tr          i18n.Translator
	logg        *logger.Logger
	metrics     *metrics.ReconcileMetrics
	gen         *generation.Controller

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int

	bg sync.WaitGroup
}

// NewStore validates the collaborators and returns an empty store.
func NewStore(p StoreParams) (*Store, error) {
	if p.Items == nil {
		return nil, errors.New("items api required")
	}
	if p.Discounts == nil {
		return nil, errors.New("discounts api required")
	}
	if p.Assignments == nil {
		return nil, errors.New("assignments api required")
	}
	if p.Confirmer == nil {
		p.Confirmer = AlwaysConfirm
	}
	if p.Translator == nil {
		p.Translator = i18n.Fallback{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Generations == nil {
		p.Generations = generation.NewController()
	}
	return &Store{
		items:       p.Items,
		discounts:   p.Discounts,
		assignments: p.Assignments,
		confirm:     p.Confirmer,
		tr:          p.Translator,
		logg:        p.Logger,
		metrics:     p.Metrics,
		gen:         p.Generations,
		subs:        map[int]chan State{},
	}, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe replays the current state and then every change. A subscriber
// that falls behind skips intermediate states but always receives the latest.
func (s *Store) Subscribe(buffer int) (<-chan State, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan State, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Discount returns a copy of the cached discount.
func (s *Store) Discount(id int64) (types.Discount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.Discounts, func(d types.Discount) bool { return d.ID == id })
	if i < 0 {
		return types.Discount{}, false
	}
	return s.state.Discounts[i].Clone(), true
}

// AssignmentsForDiscount returns the cached assignments of a discount.
func (s *Store) AssignmentsForDiscount(id int64) []types.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Assignment{}
	for _, a := range s.state.Assignments {
		if a.DiscountID == id {
			out = append(out, a)
		}
	}
	return out
}

// DiscountsForScope returns the cached discounts with at least one linked
// item in scope, either by snapshot or by a resolvable item id.
func (s *Store) DiscountsForScope(scope int64) []types.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := types.IndexItems(s.state.Items)
	out := []types.Discount{}
	for _, d := range s.state.Discounts {
		if inScope(d, scope, idx) {
			out = append(out, d.Clone())
		}
	}
	return out
}

func inScope(d types.Discount, scope int64, idx types.ItemIndex) bool {
	for _, ref := range d.Items {
		if ref.ScopeID == scope {
			return true
		}
	}
	for _, id := range d.ItemIDs {
		if item, ok := idx[id]; ok && item.ScopeID == scope {
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() State {
	out := s.state.Clone()
	out.LoadToken = s.gen.LoadToken()
	out.RefreshToken = s.gen.RefreshToken()
	return out
}

func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	for _, ch := range s.subs {
		offerLatest(ch, s.snapshotLocked())
	}
}

func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
