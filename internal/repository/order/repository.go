package order

import (
	"context"

	"cartify/internal/domain"
)

// CheckoutInput is handed to the checkout_cart procedure. Items may be empty, in which case the
// user's server cart is used.
type CheckoutInput struct {
	UserID    string
	UserEmail string
	Shipping  domain.ShippingAddress
	Items     []domain.LineRequest
	Currency  string
}

type Repository interface {
	// Checkout atomically creates an order from the input lines and returns its id.
	Checkout(ctx context.Context, in CheckoutInput) (string, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetForUser(ctx context.Context, userID, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}
