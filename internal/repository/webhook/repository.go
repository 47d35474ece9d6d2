package webhook

import (
	"context"

	"cartify/internal/domain"
)

type Repository interface {
	// Log appends an entry. eventID may be nil and payload may be nil.
	Log(ctx context.Context, eventID *string, status domain.WebhookStatus, payload []byte) error
	// Claim records eventID as processed and runs process inside the same transaction.
	// It reports false without calling process when the event was already processed.
	// If process fails nothing is recorded and its error is returned.
	Claim(ctx context.Context, eventID string, payload []byte, process func(ctx context.Context) error) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]domain.WebhookEvent, error)
}
