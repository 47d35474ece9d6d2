package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"cartify/internal/db"
	"cartify/internal/domain"
	"cartify/internal/repository/pgutil"
	"github.com/jackc/pgx/v5"
)

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

const itemColumns = `id::text, user_id::text, product_id::text, quantity, color, size, created_at`

func scanItem(row pgx.Row, it *domain.CartItem) error {
	return row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Color, &it.Size, &it.CreatedAt)
}

func (r *postgresRepo) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const q = `
SELECT c.id::text, c.user_id::text, c.product_id::text, c.quantity, c.color, c.size, c.created_at,
       p.id::text, p.category_id::text, p.name, p.slug, p.description, p.price_cents, p.currency, p.in_stock, p.image_url, p.created_at, p.updated_at
FROM cart_items c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = $1
ORDER BY c.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("cart repo: list user_id=%s error=%v", userID, err)
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		var p domain.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.Color, &it.Size, &it.CreatedAt,
			&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency, &p.InStock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		it.Product = &p
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, pgutil.MapError(err)
	}
	return items, nil
}

// Add merges into the (user, product, color, size) line, creating it when absent.
func (r *postgresRepo) Add(ctx context.Context, in AddInput) (*domain.CartItem, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, in.ProductID).Scan(&exists); err != nil {
		return nil, pgutil.MapError(err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	var it domain.CartItem
	err = scanItem(tx.QueryRow(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity, color, size)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id, color, size) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING `+itemColumns, in.UserID, in.ProductID, in.Quantity, in.Color, in.Size), &it)
	if err != nil {
		r.logger.Printf("cart repo: add user_id=%s product_id=%s error=%v", in.UserID, in.ProductID, err)
		return nil, pgutil.MapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	var it domain.CartItem
	err := scanItem(r.pool.QueryRow(ctx, `
UPDATE cart_items
SET quantity = $3
WHERE id = $1 AND user_id = $2
RETURNING `+itemColumns, itemID, userID, quantity), &it)
	if err != nil {
		err = pgutil.MapError(err)
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("cart repo: set quantity user_id=%s id=%s error=%v", userID, itemID, err)
		}
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return pgutil.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Printf("cart repo: clear user_id=%s error=%v", userID, err)
		return pgutil.MapError(err)
	}
	return nil
}
