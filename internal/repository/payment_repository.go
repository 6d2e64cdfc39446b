package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bistro-service/internal/domain"
)

// PaymentRepository encapsulates the append-only payment ledger.
// Payments are never updated or deleted after creation.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (id, email, amount, currency, gateway_ref, cart_item_ids)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		payment.ID,
		payment.Email,
		payment.Amount,
		payment.Currency,
		payment.GatewayRef,
		payment.CartItemIDs,
	).Scan(&payment.CreatedAt)
}

func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	const query = `
        SELECT id, email, amount, currency, gateway_ref, cart_item_ids, created_at
        FROM payments WHERE email=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.Email,
			&payment.Amount,
			&payment.Currency,
			&payment.GatewayRef,
			&payment.CartItemIDs,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
