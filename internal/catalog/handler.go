package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopflow/shopflow/internal/domain"
)

// Store is what the handler needs from the catalog table; *CatalogRepository
// satisfies it.
type Store interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	TableExists(ctx context.Context) bool
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.store.TableExists(r.Context()) {
		h.logger.Error("catalog table not initialized")
		h.writeError(w, http.StatusInternalServerError, "catalog table not initialized")
		return
	}

	products, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list catalog", "error", err)
		h.writeError(w, http.StatusInternalServerError, "database error occurred")
		return
	}

	h.logger.Info("catalog listed", "count", len(products))
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if !h.store.TableExists(r.Context()) {
		h.logger.Error("catalog table not initialized")
		h.writeError(w, http.StatusInternalServerError, "catalog table not initialized")
		return
	}

	product, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get catalog item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "database error occurred")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
