package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopflow/shopflow/internal/domain"
)

type fakeStore struct {
	products    []domain.Product
	listErr     error
	tableExists bool
}

func (f *fakeStore) ListAll(context.Context) ([]domain.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) TableExists(context.Context) bool {
	return f.tableExists
}

func newTestHandler(store *fakeStore) *Handler {
	return NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleList(t *testing.T) {
	t.Run("returns all products", func(t *testing.T) {
		store := &fakeStore{
			tableExists: true,
			products: []domain.Product{
				{ID: 1, Name: "widget", Price: 9.99, Stock: 10},
				{ID: 2, Name: "gadget", Price: 19.99, Stock: 5},
			},
		}
		h := newTestHandler(store)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got []domain.Product
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 products, got %d", len(got))
		}
	})

	t.Run("500 when table missing", func(t *testing.T) {
		h := newTestHandler(&fakeStore{tableExists: false})

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("500 on database error", func(t *testing.T) {
		h := newTestHandler(&fakeStore{tableExists: true, listErr: errors.New("down")})

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestHandleGet(t *testing.T) {
	store := &fakeStore{
		tableExists: true,
		products:    []domain.Product{{ID: 1, Name: "widget", Price: 9.99, Stock: 10}},
	}
	h := newTestHandler(store)

	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/catalog/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		h.HandleGet(rec, req)
		return rec
	}

	t.Run("found", func(t *testing.T) {
		rec := get("1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var got domain.Product
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if got.Name != "widget" {
			t.Fatalf("expected widget, got %s", got.Name)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if rec := get("42"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		if rec := get("0"); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for id 0, got %d", rec.Code)
		}
		if rec := get("abc"); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
		}
	})
}
