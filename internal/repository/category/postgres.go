package category

import (
	"context"
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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, name, description, created_at
FROM categories
ORDER BY name ASC
`)
	if err != nil {
		r.logger.Printf("category repo: list error=%v", err)
		return nil, pgutil.MapError(err)
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pgutil.MapError(err)
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
SELECT id::text, name, description, created_at
FROM categories
WHERE id = $1
`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, pgutil.MapError(err)
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Category) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id::text, name, description, created_at
`, in.Name, in.Description).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		r.logger.Printf("category repo: create name=%s error=%v", in.Name, err)
		return nil, pgutil.MapError(err)
	}
	return &c, nil
}

func (r *postgresRepo) Update(ctx context.Context, in domain.Category) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
UPDATE categories
SET name = $2, description = $3
WHERE id = $1
RETURNING id::text, name, description, created_at
`, in.ID, in.Name, in.Description).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		r.logger.Printf("category repo: update id=%s error=%v", in.ID, err)
		return nil, pgutil.MapError(err)
	}
	return &c, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("category repo: delete id=%s error=%v", id, err)
		return pgutil.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, in domain.Category) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
INSERT INTO categories (name, description)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET
    description = CASE WHEN EXCLUDED.description = '' THEN categories.description ELSE EXCLUDED.description END
RETURNING id::text, name, description, created_at
`, in.Name, in.Description).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		r.logger.Printf("category repo: upsert name=%s error=%v", in.Name, err)
		return nil, pgutil.MapError(err)
	}
	return &c, nil
}
