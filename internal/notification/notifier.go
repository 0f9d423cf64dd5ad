// Package notification delivers best-effort events to fulfillment staff
// systems. Delivery is fire-and-forget: the sale engine never blocks or
// fails on a notification.
package notification

import (
	"context"
	"time"
)

const (
	EventSaleCreated = "sale.created"
	EventSalePaid    = "sale.paid"
)

// Event is the payload published on the notification channel.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	SaleID     string         `json:"sale_id"`
	SaleNumber string         `json:"sale_number"`
	StoreID    string         `json:"store_id"`
	Total      int64          `json:"total"`
	Extra      map[string]any `json:"extra,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event Event) error { return nil }

// NewNoopPublisher returns a publisher that drops every event. Used when no
// broker is configured and in tests.
func NewNoopPublisher() Publisher { return noopPublisher{} }
