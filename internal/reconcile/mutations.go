package reconcile

import (
	"context"

	"github.com/angelmondragon/discountsync/internal/normalize"
	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/forms"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/metrics"
	"github.com/angelmondragon/discountsync/pkg/types"
)

const (
	entityDiscount   = "discount"
	entityAssignment = "assignment"

	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// CreateDiscount validates the form, creates the discount remotely and adds
// it to the cache. The cache is untouched when any step fails.
func (s *Store) CreateDiscount(ctx context.Context, form forms.DiscountForm) (types.Discount, error) {
	payload, err := forms.NormalizeDiscountForm(form)
	if err != nil {
		return types.Discount{}, s.fail(ctx, entityDiscount, opCreate, err)
	}
	raw, err := s.discounts.Create(ctx, *payload)
	if err != nil {
		return types.Discount{}, s.fail(ctx, entityDiscount, opCreate, err)
	}
	return s.storeDiscount(ctx, opCreate, raw, payload, i18n.StatusDiscountCreated), nil
}

// UpdateDiscount validates the form, updates the discount remotely and
// replaces the cached copy.
func (s *Store) UpdateDiscount(ctx context.Context, id int64, form forms.DiscountForm) (types.Discount, error) {
	payload, err := forms.NormalizeDiscountForm(form)
	if err != nil {
		return types.Discount{}, s.fail(ctx, entityDiscount, opUpdate, err)
	}
	raw, err := s.discounts.Update(ctx, id, *payload)
	if err != nil {
		return types.Discount{}, s.fail(ctx, entityDiscount, opUpdate, err)
	}
	if raw.ID == 0 {
		raw.ID = id
	}
	return s.storeDiscount(ctx, opUpdate, raw, payload, i18n.StatusDiscountUpdated), nil
}

// DeleteDiscount removes the discount and every cached assignment referencing
// it. It reports false without side effects when the user declines.
func (s *Store) DeleteDiscount(ctx context.Context, id int64) (bool, error) {
	prompt := i18n.ConfirmDeleteDiscount.Render(s.tr, map[string]any{"id": id})
	if !s.confirm.Confirm(prompt) {
		return false, nil
	}
	if err := s.discounts.Delete(ctx, id); err != nil {
		return false, s.fail(ctx, entityDiscount, opDelete, err)
	}

	s.mu.Lock()
	s.state.Discounts, s.state.Assignments = removeDiscount(s.state.Discounts, s.state.Assignments, id)
	s.succeedLocked(ctx, entityDiscount, opDelete, i18n.StatusDiscountDeleted)
	s.scheduleRefreshLocked(ctx)
	s.mu.Unlock()
	return true, nil
}

// CreateAssignment links an item of the active scope to a discount. A pair
// that is already linked by a cached assignment is rejected as a conflict.
func (s *Store) CreateAssignment(ctx context.Context, form forms.AssignmentForm) (types.Assignment, error) {
	payload, err := forms.NormalizeAssignmentForm(form)
	if err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opCreate, err)
	}
	if err := s.checkAssignment(*payload, 0); err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opCreate, err)
	}
	raw, err := s.assignments.Create(ctx, *payload)
	if err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opCreate, err)
	}
	return s.storeAssignment(ctx, opCreate, raw, *payload, nil, i18n.StatusAssignmentCreated)
}

// UpdateAssignment re-points an assignment. The previous link is detached
// from its discount unless another assignment still holds it.
func (s *Store) UpdateAssignment(ctx context.Context, id int64, form forms.AssignmentForm) (types.Assignment, error) {
	payload, err := forms.NormalizeAssignmentForm(form)
	if err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opUpdate, err)
	}
	if err := s.checkAssignment(*payload, id); err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opUpdate, err)
	}

	s.mu.Lock()
	previous, found := findAssignment(s.state.Assignments, id)
	s.mu.Unlock()

	raw, err := s.assignments.Update(ctx, id, *payload)
	if err != nil {
		return types.Assignment{}, s.fail(ctx, entityAssignment, opUpdate, err)
	}
	if raw.ID == 0 {
		raw.ID = id
	}
	var prev *types.Assignment
	if found {
		prev = &previous
	}
	return s.storeAssignment(ctx, opUpdate, raw, *payload, prev, i18n.StatusAssignmentUpdated)
}

// DeleteAssignment removes the assignment after confirmation.
func (s *Store) DeleteAssignment(ctx context.Context, a types.Assignment) (bool, error) {
	prompt := i18n.ConfirmDeleteAssignment.Render(s.tr, map[string]any{"item": a.Item.Name, "id": a.ID})
	if !s.confirm.Confirm(prompt) {
		return false, nil
	}
	if err := s.assignments.Delete(ctx, a.ID); err != nil {
		return false, s.fail(ctx, entityAssignment, opDelete, err)
	}

	s.mu.Lock()
	if cached, ok := findAssignment(s.state.Assignments, a.ID); ok {
		a = cached
	}
	s.state.Assignments = removeAssignment(s.state.Assignments, a.ID)
	s.state.Discounts = detachAssignment(s.state.Discounts, s.state.Assignments, a)
	s.succeedLocked(ctx, entityAssignment, opDelete, i18n.StatusAssignmentDeleted)
	s.scheduleRefreshLocked(ctx)
	s.mu.Unlock()
	return true, nil
}

func (s *Store) storeDiscount(ctx context.Context, op string, raw normalize.RawDiscount, payload *types.DiscountPayload, status i18n.Message) types.Discount {
	if raw.ItemIDs == nil {
		raw.ItemIDs = make([]any, len(payload.ItemIDs))
		for i, id := range payload.ItemIDs {
			raw.ItemIDs[i] = id
		}
	}

	s.mu.Lock()
	shaped, discarded := normalize.Discounts([]normalize.RawDiscount{raw}, s.state.Items)
	if discarded != nil {
		s.logg.WarnErr(ctx, "discarded malformed discount fields", discarded)
	}
	d := shaped[0]
	for _, a := range s.state.Assignments {
		if a.DiscountID == d.ID {
			d = mergeAssignment([]types.Discount{d}, a)[0]
		}
	}
	s.state.Discounts = upsertDiscount(s.state.Discounts, d)
	s.succeedLocked(ctx, entityDiscount, op, status)
	s.scheduleRefreshLocked(ctx)
	s.mu.Unlock()
	return d.Clone()
}

func (s *Store) storeAssignment(ctx context.Context, op string, raw normalize.RawAssignment, payload types.AssignmentPayload, previous *types.Assignment, status i18n.Message) (types.Assignment, error) {
	s.mu.Lock()
	scope := s.state.Scope
	raw = s.completeAssignmentLocked(raw, payload)
	shaped, discarded := normalize.Assignments([]normalize.RawAssignment{raw}, scope)
	if discarded != nil {
		s.logg.WarnErr(ctx, "discarded malformed assignment", discarded)
	}

	if previous != nil {
		s.state.Assignments = removeAssignment(s.state.Assignments, previous.ID)
		s.state.Discounts = detachAssignment(s.state.Discounts, s.state.Assignments, *previous)
	}
	if len(shaped) == 0 {
		// the remote accepted an assignment that does not belong to the active scope
		s.succeedLocked(ctx, entityAssignment, op, status)
		s.scheduleRefreshLocked(ctx)
		s.mu.Unlock()
		return types.Assignment{ID: raw.ID, ItemID: payload.ItemID, DiscountID: payload.DiscountID}, nil
	}

	a := shaped[0]
	s.state.Assignments = upsertAssignment(s.state.Assignments, a)
	s.state.Discounts = mergeAssignment(s.state.Discounts, a)
	s.succeedLocked(ctx, entityAssignment, op, status)
	s.scheduleRefreshLocked(ctx)
	s.mu.Unlock()
	return a, nil
}

// completeAssignmentLocked fills what a terse remote response left out from
// the request payload and the cached collections.
func (s *Store) completeAssignmentLocked(raw normalize.RawAssignment, payload types.AssignmentPayload) normalize.RawAssignment {
	if raw.ItemID == 0 {
		raw.ItemID = payload.ItemID
	}
	if raw.DiscountID == 0 {
		raw.DiscountID = payload.DiscountID
	}
	if raw.Item == nil {
		if item, ok := types.IndexItems(s.state.Items)[raw.ItemID]; ok {
			raw.Item = &normalize.RawItem{ID: item.ID, Name: item.Name, RestaurantID: item.ScopeID}
		}
	}
	if raw.Discount == nil {
		for _, d := range s.state.Discounts {
			if d.ID == raw.DiscountID {
				raw.Discount = &normalize.RawDiscountRef{ID: d.ID, DiscountType: d.DiscountType}
				break
			}
		}
	}
	return raw
}

// checkAssignment rejects pairs outside the active scope and pairs already
// linked by another cached assignment, before any remote call.
func (s *Store) checkAssignment(payload types.AssignmentPayload, selfID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasScope {
		return messageError(pkgerrors.CodeValidation, i18n.NoScopeSelected, nil)
	}
	item, ok := types.IndexItems(s.state.Items)[payload.ItemID]
	if !ok || item.ScopeID != s.state.Scope {
		return messageError(pkgerrors.CodeValidation, i18n.AssignmentOutOfScope, map[string]any{"item_id": payload.ItemID})
	}
	link := types.Link{ItemID: payload.ItemID, DiscountID: payload.DiscountID}
	if existing, ok := linkedBy(s.state.Assignments, link); ok && existing.ID != selfID {
		return messageError(pkgerrors.CodeConflict, i18n.AssignmentDuplicate, map[string]any{"assignment_id": existing.ID})
	}
	return nil
}

func (s *Store) succeedLocked(ctx context.Context, entity, op string, status i18n.Message) {
	s.state.Status = status.Render(s.tr, nil)
	s.state.Error = ""
	s.metrics.IncMutation(entity, op, metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"entity": entity, "op": op}), "mutation applied")
	s.publishLocked()
}

// fail reports err on the status channel and returns it unchanged.
func (s *Store) fail(ctx context.Context, entity, op string, err error) error {
	ctx = s.logg.WithFields(ctx, map[string]any{"entity": entity, "op": op})
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		s.logg.Debug(ctx, "mutation rejected")
	} else {
		s.logg.WarnErr(ctx, "mutation failed", err)
	}
	s.metrics.IncMutation(entity, op, metrics.OutcomeFailure)

	s.mu.Lock()
	s.state.Status = ""
	s.state.Error = s.userMessage(err, i18n.RemoteFailed)
	s.publishLocked()
	s.mu.Unlock()
	return err
}

// userMessage renders err for display. Messages extracted from a remote
// response are shown as received; untyped failures use fallback.
func (s *Store) userMessage(err error, fallback i18n.Message) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return fallback.Render(s.tr, nil)
	}
	if typed.Code() == pkgerrors.CodeDependency || typed.Code() == pkgerrors.CodeInternal {
		if typed.Message() != "" {
			return typed.Message()
		}
		return fallback.Render(s.tr, nil)
	}
	vars, _ := typed.Details().(map[string]any)
	return s.tr.Translate(typed.Key(), typed.Message(), vars)
}

func messageError(code pkgerrors.Code, msg i18n.Message, details map[string]any) *pkgerrors.Error {
	return pkgerrors.New(code, msg.Fallback).WithKey(msg.Key).WithDetails(details)
}
