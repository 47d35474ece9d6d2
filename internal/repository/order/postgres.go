package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"cartify/internal/db"
	"cartify/internal/domain"
	"cartify/internal/repository/pgutil"
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

const orderColumns = `id::text, user_id::text, user_email, status, total_cents, currency, shipping, created_at`

func (r *postgresRepo) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	shipping, err := json.Marshal(in.Shipping)
	if err != nil {
		return "", fmt.Errorf("marshal shipping: %w", err)
	}
	items := []domain.LineRequest{}
	if len(in.Items) > 0 {
		items = in.Items
	}
	lines, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	var orderID string
	err = r.pool.QueryRow(ctx, `SELECT checkout_cart($1, $2, $3, $4, $5)::text`,
		in.UserID, in.UserEmail, shipping, lines, in.Currency,
	).Scan(&orderID)
	if err != nil {
		mapped := pgutil.MapError(err)
		r.logger.Printf("order repo: checkout user_id=%s error=%v", in.UserID, mapped)
		return "", mapped
	}
	r.logger.Printf("order repo: checkout user_id=%s order_id=%s lines=%d", in.UserID, orderID, len(in.Items))
	return orderID, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) GetForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	orders, err := r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Status, &o.TotalCents, &o.Currency, &o.Shipping, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, pgutil.MapError(err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.pool.Query(ctx, `
SELECT oi.id::text, oi.order_id::text, oi.product_id::text, oi.product_name, COALESCE(p.image_url, ''),
       oi.quantity, oi.unit_price_cents, oi.color, oi.size
FROM order_items oi
LEFT JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ANY($1::uuid[])
ORDER BY oi.order_id, oi.product_name
`, ids)
	if err != nil {
		r.logger.Printf("order repo: list items error=%v", err)
		return nil, pgutil.MapError(err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it domain.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductImageURL, &it.Quantity, &it.UnitPriceCents, &it.Color, &it.Size); err != nil {
			return nil, err
		}
		if pos, ok := index[it.OrderID]; ok {
			orders[pos].Items = append(orders[pos].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, pgutil.MapError(err)
	}
	return orders, nil
}
