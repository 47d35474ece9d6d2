package seed

import (
	"context"
	"fmt"

	"cartify/internal/domain"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
	"github.com/shopspring/decimal"
)

type CategoryWriter interface {
	Upsert(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Product, error)
}

type productSeed struct {
	Slug        string
	Name        string
	Description string
	Price       string
	Category    string
	InStock     bool
}

var categories = []categorysvc.Input{
	{Name: "Apparel", Description: "Tees, hoodies and caps"},
	{Name: "Kitchen", Description: "Mugs and tableware"},
	{Name: "Stationery", Description: "Notebooks and pens"},
}

var products = []productSeed{
	{Slug: "demo-tshirt", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", Price: "19.99", Category: "Apparel", InStock: true},
	{Slug: "demo-hoodie", Name: "Demo Hoodie", Description: "Fleece hoodie with embroidered logo", Price: "49.00", Category: "Apparel", InStock: true},
	{Slug: "demo-mug", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Price: "12.99", Category: "Kitchen", InStock: true},
	{Slug: "demo-notebook", Name: "Demo Notebook", Description: "A5 dotted notebook", Price: "8.50", Category: "Stationery", InStock: false},
}

// Apply upserts demo categories and products. Running it twice leaves the same rows.
func Apply(ctx context.Context, cats CategoryWriter, prods ProductWriter) error {
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		created, err := cats.Upsert(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Name, err)
		}
		ids[c.Name] = created.ID
	}

	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("product %s: %w", p.Slug, err)
		}
		inStock := p.InStock
		categoryID := ids[p.Category]
		in := productsvc.Input{
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       &price,
			CategoryID:  &categoryID,
			InStock:     &inStock,
		}
		if _, err := prods.Upsert(ctx, in); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}
	return nil
}
