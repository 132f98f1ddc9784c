package reconcile

import (
	"context"
	"time"

	"github.com/angelmondragon/discountsync/internal/generation"
	"github.com/angelmondragon/discountsync/internal/normalize"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/metrics"
	"github.com/angelmondragon/discountsync/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	kindLoad    = "load"
	kindRefresh = "refresh"
)

type snapshotData struct {
	items       []types.Item
	discounts   []types.Discount
	assignments []types.Assignment
}

// LoadAll fetches items, discounts and assignments of scope and replaces the
// collections, unless a later load, refresh or reset superseded it in the
// meantime.
// A superseded load returns nil and leaves no trace.
func (s *Store) LoadAll(ctx context.Context, scope int64) error {
	s.mu.Lock()
	ticket := s.gen.BeginLoad()
	if !s.state.HasScope || s.state.Scope != scope {
		s.state.clearCollections()
	}
	s.state.Scope, s.state.HasScope = scope, true
	s.state.Loading = true
	s.publishLocked()
	s.mu.Unlock()

	ctx = s.requestContext(ctx, kindLoad, scope, ticket.Load)
	start := time.Now()
	data, err := s.fetch(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ticket.Current() {
		s.dropStaleLocked(ctx, kindLoad, start)
		return nil
	}
	s.state.Loading = false
	if err != nil {
		s.metrics.ObserveLoad(kindLoad, metrics.OutcomeFailure, time.Since(start))
		s.logg.WarnErr(ctx, "load failed", err)
		s.state.clearCollections()
		s.state.Status = ""
		s.state.Error = s.userMessage(err, i18n.LoadFailed)
		s.publishLocked()
		return err
	}

	s.applyLocked(data)
	s.state.Status = i18n.StatusLoaded.Render(s.tr, nil)
	s.state.Error = ""
	s.metrics.ObserveLoad(kindLoad, metrics.OutcomeSuccess, time.Since(start))
	s.logg.Debug(ctx, "load applied")
	s.publishLocked()
	return nil
}

// Refresh reloads the active scope in place. It is dropped when a load,
// reset or later refresh supersedes it. A failed refresh keeps the cache.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	scope, ticket, ok := s.beginRefreshLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.runRefresh(ctx, scope, ticket)
}

func (s *Store) beginRefreshLocked() (int64, generation.Ticket, bool) {
	if !s.state.HasScope {
		return 0, generation.Ticket{}, false
	}
	return s.state.Scope, s.gen.BeginRefresh(), true
}

func (s *Store) runRefresh(ctx context.Context, scope int64, ticket generation.Ticket) error {
	ctx = s.requestContext(ctx, kindRefresh, scope, ticket.Refresh)
	start := time.Now()
	data, err := s.fetch(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ticket.Current() || !s.state.HasScope || s.state.Scope != scope {
		s.dropStaleLocked(ctx, kindRefresh, start)
		return nil
	}
	// a refresh issued during a load supersedes it and completes it
	superseded := s.state.Loading
	s.state.Loading = false
	if err != nil {
		s.metrics.ObserveLoad(kindRefresh, metrics.OutcomeFailure, time.Since(start))
		s.logg.WarnErr(ctx, "refresh failed", err)
		s.state.Error = s.userMessage(err, i18n.RefreshFailed)
		s.publishLocked()
		return err
	}

	s.applyLocked(data)
	if superseded {
		s.state.Status = i18n.StatusLoaded.Render(s.tr, nil)
		s.state.Error = ""
	}
	s.metrics.ObserveLoad(kindRefresh, metrics.OutcomeSuccess, time.Since(start))
	s.logg.Debug(ctx, "refresh applied")
	s.publishLocked()
	return nil
}

// Reset clears the collections and supersedes every in-flight request.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen.Cancel()
	s.state = State{}
	s.publishLocked()
}

// Watch reloads the store whenever the selection changes until ctx is done.
// Loads run in the background so a newer selection supersedes an older one
// still in flight.
func (s *Store) Watch(ctx context.Context, sel Selector) error {
	events, cancel := sel.Subscribe(1)
	defer cancel()

	if scope, ok := sel.Current(); ok {
		s.Reset()
		s.loadInBackground(ctx, scope)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			s.Reset()
			if evt.Selected {
				s.loadInBackground(ctx, evt.Scope)
			}
		}
	}
}

// Wait blocks until background loads and refreshes have finished.
func (s *Store) Wait() {
	s.bg.Wait()
}

func (s *Store) loadInBackground(ctx context.Context, scope int64) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_ = s.LoadAll(ctx, scope)
	}()
}

// scheduleRefreshLocked issues the refresh ticket while the caller holds the
// lock, so no load issued afterwards can be overtaken by it, and fetches in
// the background.
func (s *Store) scheduleRefreshLocked(ctx context.Context) {
	scope, ticket, ok := s.beginRefreshLocked()
	if !ok {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_ = s.runRefresh(ctx, scope, ticket)
	}()
}

func (s *Store) fetch(ctx context.Context, scope int64) (snapshotData, error) {
	var (
		rawItems       []normalize.RawItem
		rawDiscounts   []normalize.RawDiscount
		rawAssignments []normalize.RawAssignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawItems, err = s.items.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		rawDiscounts, err = s.discounts.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		rawAssignments, err = s.assignments.List(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshotData{}, err
	}

	items := normalize.Items(rawItems)
	discounts, discountErr := normalize.Discounts(rawDiscounts, items)
	assignments, assignmentErr := normalize.Assignments(rawAssignments, scope)
	if discarded := multierr.Combine(discountErr, assignmentErr); discarded != nil {
		s.logg.WarnErr(ctx, "discarded malformed records", discarded)
	}
	for _, a := range assignments {
		discounts = mergeAssignment(discounts, a)
	}
	return snapshotData{items: items, discounts: discounts, assignments: assignments}, nil
}

func (s *Store) applyLocked(data snapshotData) {
	s.state.Items = data.items
	s.state.Discounts = data.discounts
	s.state.Assignments = data.assignments
}

func (s *Store) dropStaleLocked(ctx context.Context, kind string, start time.Time) {
	s.metrics.IncStale(kind)
	s.metrics.ObserveLoad(kind, metrics.OutcomeStale, time.Since(start))
	s.logg.Debug(ctx, "dropping superseded result")
}

func (s *Store) requestContext(ctx context.Context, kind string, scope int64, token uint64) context.Context {
	ctx = s.logg.WithRequestID(ctx, uuid.NewString())
	ctx = s.logg.WithScopeID(ctx, scope)
	return s.logg.WithToken(ctx, kind, token)
}

