package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bistro-service/internal/domain"
)

// CartRepository encapsulates cart line-item persistence.
type CartRepository interface {
	Create(ctx context.Context, item *domain.CartItem) error
	ListByEmail(ctx context.Context, email string) ([]domain.CartItem, error)
	Delete(ctx context.Context, id string) error
	// DeleteByIDs removes all rows matching the given ids in a single call
	// and returns the number of rows actually removed. Absent ids are
	// skipped, which makes the call safe to retry.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository instantiates repository.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	const query = `
        INSERT INTO cart_items (email, menu_item_id, name, price, quantity)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	return r.pool.QueryRow(ctx, query,
		item.Email,
		item.MenuItemID,
		item.Name,
		item.Price,
		item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *cartRepository) ListByEmail(ctx context.Context, email string) ([]domain.CartItem, error) {
	const query = `
        SELECT id, email, menu_item_id, name, price, quantity, created_at
        FROM cart_items WHERE email=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.Email,
			&item.MenuItemID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM cart_items WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *cartRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM cart_items WHERE id = ANY($1)`

	cmd, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
