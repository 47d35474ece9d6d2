package domain

import (
	"encoding/json"
	"time"
)

type WebhookStatus string

const (
	WebhookProcessed WebhookStatus = "processed"
	WebhookDuplicate WebhookStatus = "duplicate"
	WebhookRejected  WebhookStatus = "rejected"
	WebhookError     WebhookStatus = "error"
)

// WebhookEvent is one append-only log entry. EventID is nil when the delivery carried none.
type WebhookEvent struct {
	ID         int64           `json:"id"`
	EventID    *string         `json:"event_id"`
	Status     WebhookStatus   `json:"status"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
