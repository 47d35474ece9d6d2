package messaging

import (
	"encoding/json"
	"time"
)

type OrderCreatedItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderCreatedEvent struct {
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	TotalCents int64              `json:"total_cents"`
	Currency   string             `json:"currency"`
	Items      []OrderCreatedItem `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

type PaymentWebhookEvent struct {
	EventID    string          `json:"event_id"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
