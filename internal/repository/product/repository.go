package product

import (
	"context"

	"cartify/internal/domain"
)

// ListFilter narrows List; zero value lists everything.
type ListFilter struct {
	CategoryID string
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
