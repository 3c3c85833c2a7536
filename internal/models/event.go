package models

import "time"

// Product event types published after a committed write.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent is the message sent to the product event queue.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	ExpiryDate string    `json:"expiry_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent builds an event describing p.
func NewProductEvent(eventType string, p *Product, at time.Time) ProductEvent {
	return ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		Name:       p.Name,
		ExpiryDate: p.ExpiryString(),
		OccurredAt: at.UTC(),
	}
}
