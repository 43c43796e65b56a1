package order

import "time"

// Lifecycle event types published to the orders topic.
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
)

// OrderCreatedEvent is emitted when a new order is stored and its QR code
// rendered successfully.
type OrderCreatedEvent struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderConfirmedEvent is emitted on the first successful confirmation of an
// order; idempotent re-confirmations do not publish.
type OrderConfirmedEvent struct {
	ID          string     `json:"id"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
}
