package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopflow/shopflow/internal/domain"
)

// Store is the persistence contract the handler needs; *OrderRepository
// satisfies it.
type Store interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// EventPublisher publishes order-created events; *messaging.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type Handler struct {
	store     Store
	publisher EventPublisher
	logger    *slog.Logger
}

func NewHandler(store Store, publisher EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type createOrderRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type createOrderResponse struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
	Error   string             `json:"error,omitempty"`
}

// HandleCreate validates the request, commits the order row, and only then
// publishes the order-created event. A consumer must never see an event for
// an order that is not durably stored.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Product) == "" {
		h.writeError(w, http.StatusBadRequest, "product is required")
		return
	}
	if req.Quantity < 1 {
		h.writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	order := &domain.Order{
		OrderID:   uuid.New().String(),
		Product:   req.Product,
		Quantity:  req.Quantity,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.Insert(r.Context(), order); err != nil {
		h.logger.Error("failed to store order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:   order.OrderID,
		Product:   order.Product,
		Quantity:  order.Quantity,
		Timestamp: order.CreatedAt,
	}
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		// The row committed, so the order exists; only the event is lost.
		// Report that truthfully instead of a blanket success or failure,
		// and log enough to reconcile the queue by hand.
		h.logger.Error("order stored but event not published",
			"error", err,
			"order_id", order.OrderID,
			"product", order.Product,
			"quantity", order.Quantity,
			"timestamp", order.CreatedAt,
		)
		h.writeJSON(w, http.StatusInternalServerError, createOrderResponse{
			OrderID: order.OrderID,
			Status:  domain.OrderStatusCreatedNotQueued,
			Error:   "order stored but event publish failed",
		})
		return
	}

	h.logger.Info("order created", "order_id", order.OrderID, "product", order.Product, "quantity", order.Quantity)
	h.writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID: order.OrderID,
		Status:  domain.OrderStatusCreated,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.GetByOrderID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Order Service Running"})
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
