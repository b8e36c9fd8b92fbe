package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopflow/shopflow/internal/domain"
)

type fakeStore struct {
	insertErr error
	inserted  []domain.Order

	getFunc  func(ctx context.Context, orderID string) (*domain.Order, error)
	listFunc func(ctx context.Context) ([]domain.Order, error)
}

func (f *fakeStore) Insert(_ context.Context, order *domain.Order) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *order)
	return nil
}

func (f *fakeStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Order, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return []domain.Order{}, nil
}

type fakePublisher struct {
	publishErr error
	published  []any
}

func (f *fakePublisher) Publish(_ context.Context, event any) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

func newTestHandler(store *fakeStore, pub *fakePublisher) *Handler {
	return NewHandler(store, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postOrder(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	return rec
}

func TestHandleCreate_Success(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	h := newTestHandler(store, pub)

	rec := postOrder(t, h, `{"product":"widget","quantity":3}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp createOrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.OrderStatusCreated, resp.Status)

	_, err := uuid.Parse(resp.OrderID)
	assert.NoError(t, err, "order_id should be a well-formed uuid")

	require.Len(t, store.inserted, 1)
	assert.Equal(t, resp.OrderID, store.inserted[0].OrderID)
	assert.Equal(t, "widget", store.inserted[0].Product)
	assert.Equal(t, 3, store.inserted[0].Quantity)
	assert.WithinDuration(t, time.Now().UTC(), store.inserted[0].CreatedAt, time.Minute)

	require.Len(t, pub.published, 1)
	event, ok := pub.published[0].(domain.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, resp.OrderID, event.OrderID)
	assert.Equal(t, "widget", event.Product)
	assert.Equal(t, 3, event.Quantity)
	assert.Equal(t, store.inserted[0].CreatedAt, event.Timestamp)
}

func TestHandleCreate_UniqueOrderIDs(t *testing.T) {
	store := &fakeStore{}
	h := newTestHandler(store, &fakePublisher{})

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		rec := postOrder(t, h, `{"product":"widget","quantity":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp createOrderResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, seen[resp.OrderID], "order id %s issued twice", resp.OrderID)
		seen[resp.OrderID] = true
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty product", `{"product":"","quantity":3}`},
		{"missing product", `{"quantity":3}`},
		{"whitespace product", `{"product":"   ","quantity":3}`},
		{"negative quantity", `{"quantity":-1,"product":"x"}`},
		{"zero quantity", `{"product":"x","quantity":0}`},
		{"missing quantity", `{"product":"x"}`},
		{"malformed json", `{"product":`},
		{"non-integer quantity", `{"product":"x","quantity":"three"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			pub := &fakePublisher{}
			h := newTestHandler(store, pub)

			rec := postOrder(t, h, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, store.inserted, "no row may be inserted on validation failure")
			assert.Empty(t, pub.published, "no event may be published on validation failure")
		})
	}
}

func TestHandleCreate_StoreUnavailable(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("connection refused")}
	pub := &fakePublisher{}
	h := newTestHandler(store, pub)

	rec := postOrder(t, h, `{"product":"widget","quantity":3}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, pub.published, "store failure must abort before publish")

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotContains(t, resp, "order_id")
}

func TestHandleCreate_QueueUnavailable(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{publishErr: errors.New("broker down")}
	h := newTestHandler(store, pub)

	rec := postOrder(t, h, `{"product":"widget","quantity":3}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp createOrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.OrderStatusCreatedNotQueued, resp.Status,
		"publish failure after commit must be distinct from total failure")
	assert.NotEmpty(t, resp.OrderID, "caller needs the id of the stored order")

	require.Len(t, store.inserted, 1)
	assert.Equal(t, resp.OrderID, store.inserted[0].OrderID)
}

func TestHandleGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		want := &domain.Order{OrderID: "abc", Product: "widget", Quantity: 2, CreatedAt: time.Unix(0, 0).UTC()}
		store := &fakeStore{
			getFunc: func(_ context.Context, orderID string) (*domain.Order, error) {
				require.Equal(t, "abc", orderID)
				return want, nil
			},
		}
		h := newTestHandler(store, &fakePublisher{})

		req := httptest.NewRequest(http.MethodGet, "/orders/abc", nil)
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Order
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, *want, got)
	})

	t.Run("not found", func(t *testing.T) {
		h := newTestHandler(&fakeStore{}, &fakePublisher{})

		req := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleList(t *testing.T) {
	store := &fakeStore{
		listFunc: func(context.Context) ([]domain.Order, error) {
			return []domain.Order{
				{OrderID: "a", Product: "widget", Quantity: 1},
				{OrderID: "b", Product: "gadget", Quantity: 2},
			}, nil
		},
	}
	h := newTestHandler(store, &fakePublisher{})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 2)
}
