package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"cartify/internal/domain"
	"cartify/internal/messaging"
	"cartify/internal/payment"
	webhookrepo "cartify/internal/repository/webhook"
	"cartify/internal/telemetry"
)

// Service ingests signed provider events at most once per event id.
type Service struct {
	repo      webhookrepo.Repository
	publisher messaging.Publisher
	metrics   *telemetry.Metrics
	secret    string
	now       func() time.Time
	logger    *log.Logger
}

func New(repo webhookrepo.Repository, publisher messaging.Publisher, metrics *telemetry.Metrics, secret string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		secret:    secret,
		now:       time.Now,
		logger:    logger,
	}
}

// Delivery is one webhook request as received.
type Delivery struct {
	Body      []byte
	Signature string
	EventID   string
}

// Handle returns the logged status on success. Every rejection is logged before it is returned.
func (s *Service) Handle(ctx context.Context, d Delivery) (domain.WebhookStatus, error) {
	if s.secret == "" {
		s.logger.Printf("webhook: secret not configured")
		return "", domain.Provider("webhook secret not configured", false, errors.New("WEBHOOK_SECRET unset"))
	}
	eventID := strings.TrimSpace(d.EventID)

	if !payment.VerifyWebhook(s.secret, d.Body, strings.TrimSpace(d.Signature)) {
		s.record(ctx, optional(eventID), domain.WebhookRejected, d.Body)
		s.logger.Printf("webhook: rejected signature event_id=%s", eventID)
		return domain.WebhookRejected, domain.Unauthorized("invalid signature")
	}
	if eventID == "" {
		s.record(ctx, nil, domain.WebhookRejected, d.Body)
		s.logger.Printf("webhook: rejected missing event id")
		return domain.WebhookRejected, domain.Validation("missing event id")
	}
	if !json.Valid(d.Body) {
		s.record(ctx, &eventID, domain.WebhookRejected, nil)
		s.logger.Printf("webhook: rejected malformed payload event_id=%s", eventID)
		return domain.WebhookRejected, domain.Validation("invalid payload")
	}

	processed, err := s.repo.Claim(ctx, eventID, d.Body, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, messaging.TopicPaymentWebhook, eventID, messaging.PaymentWebhookEvent{
			EventID:    eventID,
			Payload:    json.RawMessage(d.Body),
			ReceivedAt: s.now().UTC(),
		})
	})
	if err != nil {
		s.record(ctx, &eventID, domain.WebhookError, d.Body)
		s.logger.Printf("webhook: processing event_id=%s error=%v", eventID, err)
		return domain.WebhookError, domain.Provider("processing error", false, err)
	}
	if !processed {
		s.record(ctx, &eventID, domain.WebhookDuplicate, d.Body)
		s.logger.Printf("webhook: duplicate event_id=%s", eventID)
		return domain.WebhookDuplicate, nil
	}

	s.metrics.WebhookEvent(ctx, string(domain.WebhookProcessed))
	s.logger.Printf("webhook: processed event_id=%s", eventID)
	return domain.WebhookProcessed, nil
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	return s.repo.ListRecent(ctx, limit)
}

// record appends a non-processed entry. Failures are logged only; the caller still gets its answer.
func (s *Service) record(ctx context.Context, eventID *string, status domain.WebhookStatus, body []byte) {
	s.metrics.WebhookEvent(ctx, string(status))
	var payload []byte
	if json.Valid(body) {
		payload = body
	}
	if err := s.repo.Log(ctx, eventID, status, payload); err != nil {
		s.logger.Printf("webhook: log status=%s error=%v", status, err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
