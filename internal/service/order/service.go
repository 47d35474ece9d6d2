package order

import (
	"context"
	"io"
	"log"
	"strings"

	"cartify/internal/domain"
	"cartify/internal/messaging"
	orderrepo "cartify/internal/repository/order"
	"cartify/internal/telemetry"
	"cartify/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service turns carts into orders through the atomic checkout procedure.
type Service struct {
	repo      orderrepo.Repository
	publisher messaging.Publisher
	metrics   *telemetry.Metrics
	currency  string
	logger    *log.Logger
}

func New(repo orderrepo.Repository, publisher messaging.Publisher, metrics *telemetry.Metrics, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	if currency == "" {
		currency = "INR"
	}
	return &Service{repo: repo, publisher: publisher, metrics: metrics, currency: currency, logger: logger}
}

// CreateInput is the checkout payload. Total is informational; the stored total is computed from
// catalog prices.
type CreateInput struct {
	Shipping domain.ShippingAddress `json:"shipping"`
	Items    []domain.LineRequest   `json:"items"`
	Total    *decimal.Decimal       `json:"total"`
}

func (s *Service) Create(ctx context.Context, user domain.User, in CreateInput) (*domain.Order, error) {
	shipping, err := validateShipping(in.Shipping)
	if err != nil {
		return nil, err
	}
	items := make([]domain.LineRequest, 0, len(in.Items))
	for _, it := range in.Items {
		// the checkout procedure matches ids as text, so only the canonical form is sent
		parsed, err := uuid.Parse(strings.TrimSpace(it.ProductID))
		if err != nil {
			return nil, domain.Validation("invalid product_id")
		}
		if it.Quantity < 1 || it.Quantity > domain.MaxQuantity {
			return nil, domain.Validation("invalid quantity")
		}
		items = append(items, domain.LineRequest{
			ProductID: parsed.String(),
			Quantity:  it.Quantity,
			Color:     strings.TrimSpace(it.Color),
			Size:      strings.TrimSpace(it.Size),
		})
	}

	id, err := s.repo.Checkout(ctx, orderrepo.CheckoutInput{
		UserID:    user.ID,
		UserEmail: user.Email,
		Shipping:  shipping,
		Items:     items,
		Currency:  s.currency,
	})
	if err != nil {
		s.logger.Printf("order service: checkout user_id=%s error=%v", user.ID, err)
		return nil, err
	}

	order, err := s.repo.GetForUser(ctx, user.ID, id)
	if err != nil {
		s.logger.Printf("order service: reload order_id=%s error=%v", id, err)
		return nil, err
	}

	if in.Total != nil && !in.Total.Shift(2).Round(0).Equal(decimal.NewFromInt(order.TotalCents)) {
		s.logger.Printf("order service: client total mismatch order_id=%s client=%s computed_cents=%d",
			order.ID, in.Total.String(), order.TotalCents)
	}

	s.metrics.OrderCreated(ctx, order.Currency, order.TotalCents)
	s.publishCreated(ctx, order)
	s.logger.Printf("order service: created order_id=%s user_id=%s total_cents=%d items=%d",
		order.ID, user.ID, order.TotalCents, len(order.Items))
	return order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetForUser(ctx, userID, id)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// publishCreated is best effort: the order is already committed.
func (s *Service) publishCreated(ctx context.Context, o *domain.Order) {
	event := messaging.OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		CreatedAt:  o.CreatedAt,
	}
	for _, it := range o.Items {
		productID := ""
		if it.ProductID != nil {
			productID = *it.ProductID
		}
		event.Items = append(event.Items, messaging.OrderCreatedItem{
			ProductID:      productID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	if err := s.publisher.Publish(ctx, messaging.TopicOrderCreated, o.ID, event); err != nil {
		s.logger.Printf("order service: publish order_id=%s error=%v", o.ID, err)
	}
}

func validateShipping(in domain.ShippingAddress) (domain.ShippingAddress, error) {
	out := domain.ShippingAddress{
		Email:     strings.TrimSpace(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		Country:   strings.TrimSpace(in.Country),
	}
	required := []struct {
		name, value string
	}{
		{"email", out.Email},
		{"first_name", out.FirstName},
		{"last_name", out.LastName},
		{"address", out.Address},
		{"city", out.City},
		{"zip_code", out.ZipCode},
		{"country", out.Country},
	}
	for _, f := range required {
		if f.value == "" {
			return out, domain.Validation("shipping " + f.name + " is required")
		}
	}
	if !validation.Email(out.Email) {
		return out, domain.Validation("invalid email format")
	}
	return out, nil
}
