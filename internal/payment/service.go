package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"cartify/internal/domain"
	"github.com/shopspring/decimal"
)

// Service validates payment requests before they reach the provider.
type Service struct {
	gateway   Gateway
	keySecret string
	currency  string
	now       func() time.Time
	logger    *log.Logger
}

func NewService(gateway Gateway, keySecret, defaultCurrency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &Service{
		gateway:   gateway,
		keySecret: keySecret,
		currency:  defaultCurrency,
		now:       time.Now,
		logger:    logger,
	}
}

// CreateOrderInput carries the amount in the smallest currency unit.
type CreateOrderInput struct {
	Amount   *decimal.Decimal
	Currency string
	Receipt  string
}

// CreateOrder rounds the amount to an integer and opens an auto-captured provider order.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if in.Amount == nil {
		return nil, domain.Validation("amount is required")
	}
	amount := in.Amount.Round(0).IntPart()
	if amount <= 0 {
		return nil, domain.Validation("amount must be a positive number")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}
	receipt := strings.TrimSpace(in.Receipt)
	if receipt == "" {
		receipt = fmt.Sprintf("rcpt_%d", s.now().UnixMilli())
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, domain.Provider(ErrNotConfigured.Error(), false, err)
		}
		return nil, domain.Provider("failed to create payment order", false, err)
	}
	return order, nil
}

// VerifyInput holds the provider's checkout callback parameters.
type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Verify accepts a payment only when the callback signature matches.
func (s *Service) Verify(in VerifyInput) error {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return domain.Validation("missing payment verification parameters")
	}
	if s.keySecret == "" {
		return domain.Provider(ErrNotConfigured.Error(), false, ErrNotConfigured)
	}
	if !VerifyPayment(s.keySecret, in.OrderID, in.PaymentID, in.Signature) {
		s.logger.Printf("payment: signature mismatch order_id=%s payment_id=%s", in.OrderID, in.PaymentID)
		return domain.Validation("invalid signature")
	}
	return nil
}
