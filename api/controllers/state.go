package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/discountsync/api/responses"
	"github.com/angelmondragon/discountsync/api/validators"
	"github.com/angelmondragon/discountsync/internal/reconcile"
	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/logger"
	"github.com/angelmondragon/discountsync/pkg/pagination"
	"github.com/angelmondragon/discountsync/pkg/types"
)

// StoreView is the read side of the reconciliation store plus an on demand refresh.
type StoreView interface {
	Snapshot() reconcile.State
	DiscountsForScope(scope int64) []types.Discount
	Discount(id int64) (types.Discount, bool)
	AssignmentsForDiscount(id int64) []types.Assignment
	Refresh(ctx context.Context) error
}

// ScopeSelector switches the active scope.
type ScopeSelector interface {
	Select(ctx context.Context, scope int64) error
	Current() (int64, bool)
}

type selectionRequest struct {
	ScopeID int64 `json:"scope_id" validate:"required,gt=0"`
}

type discountPage struct {
	Discounts  []types.Discount `json:"discounts"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type discountDetail struct {
	Discount    types.Discount     `json:"discount"`
	Assignments []types.Assignment `json:"assignments"`
}

func State(store StoreView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// Discounts pages through cached discounts by id, narrowed to ?scope= when given.
func Discounts(store StoreView, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok, err := validators.ParseQueryID(r, "scope")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		rows := store.Snapshot().Discounts
		if ok {
			rows = store.DiscountsForScope(scope)
		}
		page, next, err := pagination.Page(rows, func(d types.Discount) int64 { return d.ID }, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").WithDetails(map[string]any{"field": "cursor"}))
			return
		}
		responses.WriteSuccess(w, discountPage{Discounts: page, NextCursor: next})
	}
}

func DiscountByID(store StoreView, tr i18n.Translator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "discountId")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, i18n.InvalidIdentifier.Render(tr, nil)).WithDetails(map[string]any{"discountId": raw}))
			return
		}
		d, found := store.Discount(id)
		if !found {
			msg := i18n.DiscountNotFound.Render(tr, map[string]any{"id": id})
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, msg).WithKey(i18n.DiscountNotFound.Key))
			return
		}
		responses.WriteSuccess(w, discountDetail{Discount: d, Assignments: store.AssignmentsForDiscount(id)})
	}
}

// Refresh reloads the active scope and returns the resulting state.
func Refresh(store StoreView, tr i18n.Translator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !store.Snapshot().HasScope {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, i18n.NoScopeSelected.Render(tr, nil)).WithKey(i18n.NoScopeSelected.Key))
			return
		}
		if err := store.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// SelectScope makes the posted scope active. The store reloads asynchronously.
func SelectScope(sel ScopeSelector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := sel.Select(r.Context(), req.ScopeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope, _ := sel.Current()
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]int64{"scope_id": scope})
	}
}
