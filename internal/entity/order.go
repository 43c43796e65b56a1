package entity

import "time"

// Status enumerates the order lifecycle states.
type Status string

const (
	// StatusPending marks an order that still awaits its QR confirmation.
	StatusPending Status = "pending"
	// StatusConfirmed marks an order whose confirmation link was resolved.
	StatusConfirmed Status = "confirmed"
)

// Order is a unit of work confirmed by scanning its QR code. Records live in
// process memory only; the store hands out value copies, so mutating an Order
// outside the store never affects the authoritative record.
type Order struct {
	ID          string
	Description string
	Status      Status
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	ConfirmURL  string
}

// Confirmed reports whether the order reached its terminal state.
func (o Order) Confirmed() bool {
	return o.Status == StatusConfirmed
}
