package cart

import (
	"context"

	"cartify/internal/domain"
)

// AddInput describes one "add to cart" request for a user.
type AddInput struct {
	UserID    string
	ProductID string
	Quantity  int
	Color     string
	Size      string
}

// Repository stores server-tracked cart lines. Every method is scoped to the owning user.
type Repository interface {
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
	Add(ctx context.Context, in AddInput) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
}
