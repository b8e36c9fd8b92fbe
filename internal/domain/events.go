package domain

import "time"

// OrderCreatedEvent is the snapshot published to the orders queue after an
// order row commits. It is a message, not the record of truth: consumers must
// tolerate redelivery.
type OrderCreatedEvent struct {
	OrderID   string    `json:"order_id"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}
