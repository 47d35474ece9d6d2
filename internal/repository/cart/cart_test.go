//go:build integration

package cart

import (
	"context"
	"errors"
	"testing"

	"cartify/internal/domain"
	"cartify/internal/testutil"
)

const (
	alice = "00000000-0000-4000-8000-0000000000a1"
	bob   = "00000000-0000-4000-8000-0000000000b0"
)

func TestPostgres_AddMergesVariants(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Postgres(ctx, t)
	repo := NewPostgres(pool, nil)

	var productID string
	if err := pool.QueryRow(ctx, `INSERT INTO products (name, slug, price_cents, currency) VALUES ('Mug', 'mug', 1250, 'INR') RETURNING id::text`).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	first, err := repo.Add(ctx, AddInput{UserID: alice, ProductID: productID, Quantity: 1, Color: "red"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	merged, err := repo.Add(ctx, AddInput{UserID: alice, ProductID: productID, Quantity: 2, Color: "red"})
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if merged.ID != first.ID || merged.Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", merged)
	}
	if _, err := repo.Add(ctx, AddInput{UserID: alice, ProductID: productID, Quantity: 1, Color: "blue"}); err != nil {
		t.Fatalf("add variant: %v", err)
	}

	items, err := repo.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].Product == nil || items[0].Product.PriceCents != 1250 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestPostgres_LinesAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	pool := testutil.Postgres(ctx, t)
	repo := NewPostgres(pool, nil)

	var productID string
	if err := pool.QueryRow(ctx, `INSERT INTO products (name, slug, price_cents, currency) VALUES ('Mug', 'mug', 100, 'INR') RETURNING id::text`).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	line, err := repo.Add(ctx, AddInput{UserID: alice, ProductID: productID, Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := repo.SetQuantity(ctx, bob, line.ID, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's line, got %v", err)
	}
	if err := repo.Delete(ctx, bob, line.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's line, got %v", err)
	}
	if _, err := repo.Add(ctx, AddInput{UserID: alice, ProductID: "00000000-0000-4000-8000-000000000999", Quantity: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}

	if err := repo.Clear(ctx, alice); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, err := repo.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d", len(items))
	}
}
