package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeSearcher struct {
	hits json.RawMessage
	err  error

	gotQuery string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (json.RawMessage, error) {
	f.gotQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func newTestHandler(s Searcher) *Handler {
	return NewHandler(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSearch(t *testing.T) {
	t.Run("returns hits for a query", func(t *testing.T) {
		searcher := &fakeSearcher{hits: json.RawMessage(`{"total":{"value":1},"hits":[{"_id":"1"}]}`)}
		h := newTestHandler(searcher)

		rec := httptest.NewRecorder()
		h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/search?q=widget", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if searcher.gotQuery != "widget" {
			t.Fatalf("expected query 'widget', got %q", searcher.gotQuery)
		}

		var body struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Total.Value != 1 {
			t.Fatalf("expected total 1, got %d", body.Total.Value)
		}
	})

	t.Run("400 when q is missing", func(t *testing.T) {
		searcher := &fakeSearcher{}
		h := newTestHandler(searcher)

		rec := httptest.NewRecorder()
		h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if searcher.gotQuery != "" {
			t.Fatal("searcher must not be called without a query")
		}
	})

	t.Run("500 when the index is unreachable", func(t *testing.T) {
		h := newTestHandler(&fakeSearcher{err: errors.New("no living connections")})

		rec := httptest.NewRecorder()
		h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/search?q=widget", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if resp["error"] != "search operation failed" {
			t.Fatalf("unexpected error message: %s", resp["error"])
		}
	})
}
