package product

import (
	"context"
	"io"
	"log"

	"cartify/internal/db"
	"cartify/internal/domain"
	"cartify/internal/repository/pgutil"
	"github.com/jackc/pgx/v5"
)

const columns = `id::text, category_id::text, name, slug, description, price_cents, currency, in_stock, image_url, created_at, updated_at`

type postgresRepo struct {
	pool   db.Querier
	logger *log.Logger
}

func NewPostgres(pool db.Querier, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency, &p.InStock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	q := `SELECT ` + columns + ` FROM products`
	var args []any
	if filter.CategoryID != "" {
		q += ` WHERE category_id = $1`
		args = append(args, filter.CategoryID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list category_id=%s error=%v", filter.CategoryID, err)
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category_id=%s error=%v", filter.CategoryID, err)
		return nil, pgutil.MapError(err)
	}
	r.logger.Printf("product repo: list category_id=%s count=%d", filter.CategoryID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id = $1`, id), &p)
	if err != nil {
		err = pgutil.MapError(err)
		if err == domain.ErrNotFound {
			r.logger.Printf("product repo: get id=%s not found", id)
		} else {
			r.logger.Printf("product repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (category_id, name, slug, description, price_cents, currency, in_stock, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns
	var p domain.Product
	err := scanProduct(r.pool.QueryRow(ctx, q, in.CategoryID, in.Name, in.Slug, in.Description, in.PriceCents, in.Currency, in.InStock, in.ImageURL), &p)
	if err != nil {
		r.logger.Printf("product repo: create slug=%s error=%v", in.Slug, err)
		return nil, pgutil.MapError(err)
	}
	r.logger.Printf("product repo: created id=%s slug=%s", p.ID, p.Slug)
	return &p, nil
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET category_id = $2,
    name = $3,
    slug = $4,
    description = $5,
    price_cents = $6,
    currency = $7,
    in_stock = $8,
    image_url = $9,
    updated_at = now()
WHERE id = $1
RETURNING ` + columns
	var p domain.Product
	err := scanProduct(r.pool.QueryRow(ctx, q, in.ID, in.CategoryID, in.Name, in.Slug, in.Description, in.PriceCents, in.Currency, in.InStock, in.ImageURL), &p)
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", in.ID, err)
		return nil, pgutil.MapError(err)
	}
	return &p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return pgutil.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert inserts or refreshes a product keyed by slug.
func (r *postgresRepo) Upsert(ctx context.Context, in domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (category_id, name, slug, description, price_cents, currency, in_stock, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    in_stock = EXCLUDED.in_stock,
    image_url = EXCLUDED.image_url,
    updated_at = now()
RETURNING ` + columns
	var p domain.Product
	err := scanProduct(r.pool.QueryRow(ctx, q, in.CategoryID, in.Name, in.Slug, in.Description, in.PriceCents, in.Currency, in.InStock, in.ImageURL), &p)
	if err != nil {
		r.logger.Printf("product repo: upsert slug=%s error=%v", in.Slug, err)
		return nil, pgutil.MapError(err)
	}
	r.logger.Printf("product repo: upserted slug=%s id=%s", p.Slug, p.ID)
	return &p, nil
}
