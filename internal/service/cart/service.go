package cart

import (
	"context"
	"errors"
	"strings"

	"cartify/internal/domain"
	cartrepo "cartify/internal/repository/cart"
	"github.com/google/uuid"
)

// Service manages the caller's server-tracked cart lines.
type Service struct {
	repo cartrepo.Repository
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

// AddInput is the body of "add to cart".
type AddInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.repo.List(ctx, userID)
}

// Add merges into the caller's line for the same product and variant, or creates one.
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*domain.CartItem, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(in.ProductID))
	if err != nil {
		return nil, domain.Validation("invalid product_id")
	}
	if in.Quantity < 1 || in.Quantity > domain.MaxQuantity {
		return nil, domain.Validation("invalid quantity")
	}
	item, err := s.repo.Add(ctx, cartrepo.AddInput{
		UserID:    userID,
		ProductID: parsed.String(),
		Quantity:  in.Quantity,
		Color:     strings.TrimSpace(in.Color),
		Size:      strings.TrimSpace(in.Size),
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("product not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 || quantity > domain.MaxQuantity {
		return nil, domain.Validation("invalid quantity")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.SetQuantity(ctx, userID, itemID, quantity)
}

func (s *Service) Remove(ctx context.Context, userID, itemID string) error {
	if _, err := uuid.Parse(itemID); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, userID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
