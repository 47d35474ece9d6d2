package seed

import (
	"context"
	"errors"
	"testing"

	"cartify/internal/domain"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
)

type stubCategories struct{ names []string }

func (s *stubCategories) Upsert(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	s.names = append(s.names, in.Name)
	return &domain.Category{ID: "id-" + in.Name, Name: in.Name}, nil
}

type stubProducts struct {
	items []productsvc.Input
	err   error
}

func (s *stubProducts) Upsert(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, in)
	return &domain.Product{Slug: in.Slug}, nil
}

func TestApply_LinksProductsToCategories(t *testing.T) {
	cats := &stubCategories{}
	prods := &stubProducts{}
	if err := Apply(context.Background(), cats, prods); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cats.names) != 3 || len(prods.items) != 4 {
		t.Fatalf("unexpected counts: %d categories, %d products", len(cats.names), len(prods.items))
	}
	mug := prods.items[2]
	if mug.Slug != "demo-mug" || *mug.CategoryID != "id-Kitchen" || mug.Price.String() != "12.99" {
		t.Fatalf("unexpected mug %+v", mug)
	}
	if *prods.items[3].InStock {
		t.Fatalf("expected notebook out of stock")
	}
}

func TestApply_StopsOnProductError(t *testing.T) {
	boom := errors.New("boom")
	err := Apply(context.Background(), &stubCategories{}, &stubProducts{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
