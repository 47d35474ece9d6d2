package webhook

import (
	"context"
	"errors"
	"io"
	"log"

	"cartify/internal/db"
	"cartify/internal/domain"
	"cartify/internal/repository/pgutil"
	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	pool   db.Querier
	logger *log.Logger
}

func NewPostgres(pool db.Querier, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Log(ctx context.Context, eventID *string, status domain.WebhookStatus, payload []byte) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO webhook_events (event_id, status, payload)
VALUES ($1, $2, $3)
`, eventID, string(status), payload)
	if err != nil {
		r.logger.Printf("webhook repo: log status=%s error=%v", status, err)
		return pgutil.MapError(err)
	}
	return nil
}

func (r *postgresRepo) Claim(ctx context.Context, eventID string, payload []byte, process func(ctx context.Context) error) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// a concurrent claim of the same id blocks here until the other transaction ends
	var id int64
	err = tx.QueryRow(ctx, `
INSERT INTO webhook_events (event_id, status, payload)
VALUES ($1, 'processed', $2)
ON CONFLICT (event_id) WHERE status = 'processed' DO NOTHING
RETURNING id
`, eventID, payload).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Printf("webhook repo: claim event_id=%s error=%v", eventID, err)
		return false, pgutil.MapError(err)
	}

	if err := process(ctx); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	r.logger.Printf("webhook repo: claimed event_id=%s id=%d", eventID, id)
	return true, nil
}

func (r *postgresRepo) ListRecent(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, event_id, status, payload, received_at
FROM webhook_events
ORDER BY id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	events := []domain.WebhookEvent{}
	for rows.Next() {
		var ev domain.WebhookEvent
		var status string
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.EventID, &status, &payload, &ev.ReceivedAt); err != nil {
			return nil, err
		}
		ev.Status = domain.WebhookStatus(status)
		ev.Payload = payload
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, pgutil.MapError(err)
	}
	return events, nil
}
