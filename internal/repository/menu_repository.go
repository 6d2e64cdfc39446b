package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bistro-service/internal/domain"
)

// MenuRepository encapsulates menu catalog persistence.
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	List(ctx context.Context) ([]domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

type menuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository instantiates repository.
func NewMenuRepository(pool *pgxpool.Pool) MenuRepository {
	return &menuRepository{pool: pool}
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	const query = `
        INSERT INTO menu_items (name, category, price, image)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		item.Name,
		item.Category,
		item.Price,
		item.Image,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *menuRepository) List(ctx context.Context) ([]domain.MenuItem, error) {
	const query = `
        SELECT id, name, category, price, image, created_at
        FROM menu_items ORDER BY category, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.Price,
			&item.Image,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *menuRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM menu_items WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
