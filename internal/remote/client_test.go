package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/angelmondragon/discountsync/internal/normalize"
	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithAuthToken(" secret "))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	require.ErrorIs(t, err, errBaseURLRequired)
}

func TestItemsListUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/restaurants/10/items", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"id":"1","name":"Burger","restaurant_id":10}]}`)
	})

	raw, err := client.Items().List(context.Background(), 10)
	require.NoError(t, err)

	items := normalize.Items(raw)
	require.Len(t, items, 1)
	assert.Equal(t, types.Item{ID: 1, Name: "Burger", ScopeID: 10}, items[0])
}

func TestDiscountsListBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discounts", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("restaurant_id"))
		_, _ = io.WriteString(w, `[{"id":3,"discount_type":"percentage_off","percentage":"12.5","item_ids":[1,"2"],"items":[{"id":1,"name":"Burger","restaurant_id":10}]}]`)
	})

	raw, err := client.Discounts().List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, json.Number("1"), raw[0].ItemIDs[0])
	assert.Equal(t, "2", raw[0].ItemIDs[1])
	require.NotNil(t, raw[0].Percentage)
	assert.Equal(t, "12.5", raw[0].Percentage.String())

	discounts, err := normalize.Discounts(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, discounts[0].ItemIDs)
}

func TestDiscountCreateSendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "amount_off", body["discount_type"])
		assert.Equal(t, float64(550), body["amount"])
		assert.Equal(t, []any{float64(1), float64(2)}, body["item_ids"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":9,"discount_type":"amount_off","amount":550,"item_ids":[1,2]}}`)
	})

	amount := int64(550)
	got, err := client.Discounts().Create(context.Background(), types.DiscountPayload{
		DiscountType: "amount_off",
		AmountCents:  &amount,
		ItemIDs:      []int64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
	require.NotNil(t, got.AmountCents)
	assert.Equal(t, int64(550), *got.AmountCents)
}

func TestUpdateAndDeleteRoutes(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"id":4,"item_id":7,"discount_id":3,"item":{"id":7,"name":"Shake","restaurant_id":10}}`)
	})
	ctx := context.Background()

	_, err := client.Discounts().Update(ctx, 5, types.DiscountPayload{DiscountType: "amount_off", ItemIDs: []int64{1}})
	require.NoError(t, err)
	require.NoError(t, client.Discounts().Delete(ctx, 5))

	a, err := client.Assignments().Update(ctx, 4, types.AssignmentPayload{ItemID: 7, DiscountID: 3})
	require.NoError(t, err)
	require.NotNil(t, a.Item)
	assert.Equal(t, "Shake", a.Item.Name)
	require.NoError(t, client.Assignments().Delete(ctx, 4))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PATCH /discounts/5",
		"DELETE /discounts/5",
		"PATCH /assignments/4",
		"DELETE /assignments/4",
	}, seen)
}

func TestRemoteErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "nested error", body: `{"error":{"code":"VALIDATION_ERROR","message":"Amount too large"}}`, want: "Amount too large"},
		{name: "top level message", body: `{"message":"Discount is locked"}`, want: "Discount is locked"},
		{name: "error string", body: `{"error":"not allowed"}`, want: "not allowed"},
		{name: "field errors", body: `{"errors":{"percentage":["must be below 100"],"amount":[""]}}`, want: "must be below 100"},
		{name: "error list", body: `{"errors":["first problem","second"]}`, want: "first problem"},
		{name: "html", body: `<html>bad gateway</html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.Assignments().Create(context.Background(), types.AssignmentPayload{ItemID: 1, DiscountID: 2})
			require.Error(t, err)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
			assert.Equal(t, tc.want, typed.Message())
			assert.Equal(t, "errors.remote", typed.Key())

			var status *pkgerrors.RemoteStatusError
			require.True(t, errors.As(err, &status))
			assert.Equal(t, http.StatusUnprocessableEntity, status.StatusCode)
		})
	}
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(url)
	require.NoError(t, err)

	_, err = client.Items().List(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, pkgerrors.As(err).Message())
}

func TestDecodeFailureIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": "not a list"}`)
	})

	_, err := client.Assignments().List(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
