package importer

import (
	"context"
	"strings"
	"testing"

	"cartify/internal/domain"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
)

type stubProductWriter struct {
	items []productsvc.Input
}

type stubCategoryWriter struct {
	items []categorysvc.Input
}

func (s *stubProductWriter) Upsert(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	s.items = append(s.items, in)
	return &domain.Product{Name: in.Name}, nil
}

func (s *stubCategoryWriter) Upsert(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	s.items = append(s.items, in)
	return &domain.Category{ID: "cat-" + strings.ToLower(in.Name), Name: in.Name}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,slug,description,price,currency,category,in_stock,image_url
Stoneware Mug,stoneware-mug,Glazed mug,12.50,INR,Kitchen,true,https://example.com/mug.jpg
Linen Apron,,Natural linen,24,INR,kitchen,false,
,,,,,,,
Desk Lamp,,,39.99,,,,`

	products := &stubProductWriter{}
	categories := &stubCategoryWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, categories)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	first := products.items[0]
	if first.Slug != "stoneware-mug" || first.Price.String() != "12.5" || first.ImageURL != "https://example.com/mug.jpg" {
		t.Fatalf("unexpected first product: %+v", first)
	}
	if first.CategoryID == nil || *first.CategoryID != "cat-kitchen" {
		t.Fatalf("expected kitchen category, got %v", first.CategoryID)
	}
	if products.items[1].InStock == nil || *products.items[1].InStock {
		t.Fatalf("expected second product out of stock")
	}
	if products.items[2].CategoryID != nil || products.items[2].InStock != nil {
		t.Fatalf("expected defaults on third product: %+v", products.items[2])
	}
	if len(categories.items) != 1 {
		t.Fatalf("expected category upserted once (case-insensitive), got %d", len(categories.items))
	}
}

func TestCSVImporter_InvalidPrice(t *testing.T) {
	csvData := "name,price\nMug,abc\n"
	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductWriter{}, nil)
	count, err := imp.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing imported, got %d", count)
	}
}

func TestCSVImporter_MissingColumns(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("slug,description\n"), &stubProductWriter{}, nil)
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected missing column error")
	}
}
