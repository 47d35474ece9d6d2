package cache

import (
	"context"
	"errors"

	"cartify/internal/domain"
)

// CatalogCache stores catalog reads. Misses are reported as ErrCacheMiss.
type CatalogCache interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SetProduct(ctx context.Context, p *domain.Product) error
	GetProductList(ctx context.Context, categoryID string) ([]domain.Product, error)
	SetProductList(ctx context.Context, categoryID string, products []domain.Product) error
	// InvalidateProduct drops the product entry and every cached list.
	InvalidateProduct(ctx context.Context, id string) error
	// InvalidateCatalog drops every cached product and list, for writes that touch many products.
	InvalidateCatalog(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
