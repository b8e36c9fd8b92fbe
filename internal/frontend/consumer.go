package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopflow/shopflow/internal/domain"
)

// OrderEventHandler processes order-created events drained from the queue by
// the facade's background consumer. It confirms the order is retrievable from
// the order service before the message is acked; a failed confirmation
// returns an error so the delivery is redelivered.
type OrderEventHandler struct {
	orderServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewOrderEventHandler(orderServiceURL string, client *http.Client, logger *slog.Logger) *OrderEventHandler {
	return &OrderEventHandler{
		orderServiceURL: orderServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *OrderEventHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event",
		"order_id", event.OrderID, "product", event.Product, "quantity", event.Quantity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		h.orderServiceURL+"/orders/"+event.OrderID, nil)
	if err != nil {
		return fmt.Errorf("create order lookup request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("look up order %s: %w", event.OrderID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Store-then-publish means the row must exist by the time the event
		// is visible; anything else is worth surfacing loudly.
		return fmt.Errorf("order service returned status %d for order %s", resp.StatusCode, event.OrderID)
	}

	h.logger.Info("order event processed", "order_id", event.OrderID)
	return nil
}
