package dto

import (
	"time"

	"github.com/sello-app/sello/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ConfirmURL  string     `json:"confirmUrl"`
}

// QRPayload carries an encoded QR image ready for JSON transport.
type QRPayload struct {
	Content     string `json:"content"`
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// CreateOrderResponse bundles the stored order with its scannable QR code.
type CreateOrderResponse struct {
	Order OrderResponse `json:"order"`
	QR    QRPayload     `json:"qr"`
}

// OrderListResponse wraps the full order listing.
type OrderListResponse struct {
	Total int             `json:"total"`
	Data  []OrderResponse `json:"data"`
}

// ConfirmOrderResponse reports the outcome of a confirmation request.
type ConfirmOrderResponse struct {
	Order            OrderResponse `json:"order"`
	AlreadyConfirmed bool          `json:"alreadyConfirmed"`
}

// EncodeResponse is the result of the standalone text-to-QR endpoint.
type EncodeResponse struct {
	Content     string `json:"content"`
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
	Length      int    `json:"length"`
}

// FromOrder maps a domain order onto its transport shape.
func FromOrder(order entity.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		Description: order.Description,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		ConfirmedAt: order.ConfirmedAt,
		ConfirmURL:  order.ConfirmURL,
	}
}

// FromOrders maps a slice of domain orders, keeping input order.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromOrder(order))
	}
	return out
}
