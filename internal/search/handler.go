package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("search")

// Searcher is the query contract the handler needs; *Index satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
}

type Handler struct {
	searcher Searcher
	logger   *slog.Logger
	errCount metric.Int64Counter
}

func NewHandler(searcher Searcher, logger *slog.Logger) *Handler {
	errCount, err := meter.Int64Counter("search_errors_total",
		metric.WithDescription("Total number of search errors"),
	)
	if err != nil {
		logger.Error("failed to create search error counter", "error", err)
	}

	return &Handler{
		searcher: searcher,
		logger:   logger,
		errCount: errCount,
	}
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	hits, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", "error", err, "query", query)
		if h.errCount != nil {
			h.errCount.Add(r.Context(), 1, metric.WithAttributes(attribute.String("error_type", "search")))
		}
		h.writeError(w, http.StatusInternalServerError, "search operation failed")
		return
	}

	h.logger.Info("search completed", "query", query)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(hits); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
