package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/angelmondragon/discountsync/internal/normalize"
	"github.com/angelmondragon/discountsync/pkg/types"
)

// scopeQueryParam narrows list endpoints to one restaurant on backends that
// support it.
const scopeQueryParam = "restaurant_id"

func scopeQuery(scope int64) url.Values {
	return url.Values{scopeQueryParam: []string{strconv.FormatInt(scope, 10)}}
}

// ItemsAPI lists the menu items of a restaurant.
type ItemsAPI struct{ c *Client }

// List returns the items of restaurant scope.
func (a *ItemsAPI) List(ctx context.Context, scope int64) ([]normalize.RawItem, error) {
	var out []normalize.RawItem
	if err := a.c.do(ctx, http.MethodGet, fmt.Sprintf("/restaurants/%d/items", scope), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DiscountsAPI manages discounts on the backend.
type DiscountsAPI struct{ c *Client }

// List returns the discounts the backend reports for scope. The restaurant
// filter is only a hint; callers narrow the result with the cached items.
func (a *DiscountsAPI) List(ctx context.Context, scope int64) ([]normalize.RawDiscount, error) {
	var out []normalize.RawDiscount
	if err := a.c.do(ctx, http.MethodGet, "/discounts", scopeQuery(scope), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new discount and returns the stored record.
func (a *DiscountsAPI) Create(ctx context.Context, payload types.DiscountPayload) (normalize.RawDiscount, error) {
	var out normalize.RawDiscount
	err := a.c.do(ctx, http.MethodPost, "/discounts", nil, payload, &out)
	return out, err
}

// Update patches discount id and returns the stored record.
func (a *DiscountsAPI) Update(ctx context.Context, id int64, payload types.DiscountPayload) (normalize.RawDiscount, error) {
	var out normalize.RawDiscount
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/discounts/%d", id), nil, payload, &out)
	return out, err
}

// Delete removes discount id.
func (a *DiscountsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/discounts/%d", id), nil, nil, nil)
}

// AssignmentsAPI manages discount assignments on the backend.
type AssignmentsAPI struct{ c *Client }

// List returns the assignments the backend reports for scope. Like the
// discount listing, the restaurant filter is a hint and may be ignored.
func (a *AssignmentsAPI) List(ctx context.Context, scope int64) ([]normalize.RawAssignment, error) {
	var out []normalize.RawAssignment
	if err := a.c.do(ctx, http.MethodGet, "/assignments", scopeQuery(scope), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create links an item to a discount.
func (a *AssignmentsAPI) Create(ctx context.Context, payload types.AssignmentPayload) (normalize.RawAssignment, error) {
	var out normalize.RawAssignment
	err := a.c.do(ctx, http.MethodPost, "/assignments", nil, payload, &out)
	return out, err
}

// Update re-points assignment id.
func (a *AssignmentsAPI) Update(ctx context.Context, id int64, payload types.AssignmentPayload) (normalize.RawAssignment, error) {
	var out normalize.RawAssignment
	err := a.c.do(ctx, http.MethodPatch, fmt.Sprintf("/assignments/%d", id), nil, payload, &out)
	return out, err
}

// Delete removes assignment id.
func (a *AssignmentsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/assignments/%d", id), nil, nil, nil)
}
