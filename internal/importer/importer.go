package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cartify/internal/domain"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and inserts or updates products keyed by slug.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	categoryID map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		categoryID: map[string]string{},
	}
}

// Run upserts one product per data row and returns how many were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing required column \"name\"")
	}
	if _, ok := index["price"]; !ok {
		return 0, errors.New("missing required column \"price\"")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		in, category, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if category != "" {
			id, err := i.resolveCategory(ctx, category)
			if err != nil {
				return imported, fmt.Errorf("row %d: category %q: %w", line, category, err)
			}
			in.CategoryID = &id
		}
		if _, err := i.products.Upsert(ctx, in); err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", line, in.Name, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) resolveCategory(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(name)
	if id, ok := i.categoryID[key]; ok {
		return id, nil
	}
	if i.categories == nil {
		return "", errors.New("category writer not configured")
	}
	c, err := i.categories.Upsert(ctx, categorysvc.Input{Name: name})
	if err != nil {
		return "", err
	}
	i.categoryID[key] = c.ID
	return c.ID, nil
}

func parseRow(record []string, index map[string]int) (productsvc.Input, string, error) {
	in := productsvc.Input{
		Name:        pick(record, index, "name"),
		Slug:        pick(record, index, "slug"),
		Description: pick(record, index, "description"),
		Currency:    pick(record, index, "currency"),
		ImageURL:    pick(record, index, "image_url"),
	}

	rawPrice := pick(record, index, "price")
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return in, "", fmt.Errorf("invalid price %q", rawPrice)
	}
	in.Price = &price

	if raw := pick(record, index, "in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return in, "", fmt.Errorf("invalid in_stock %q", raw)
		}
		in.InStock = &inStock
	}
	return in, pick(record, index, "category"), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
