package domain

import "time"

type OrderStatus string

const (
	// OrderStatusCreated means the order is committed and its event is on the queue.
	OrderStatusCreated OrderStatus = "created"
	// OrderStatusCreatedNotQueued means the order is committed but the
	// order-created event could not be published. The row is authoritative;
	// the missed event has to be reconciled by hand.
	OrderStatusCreatedNotQueued OrderStatus = "created_not_queued"
)

type Order struct {
	OrderID   string    `json:"order_id"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
