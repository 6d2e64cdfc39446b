package service

import (
	"context"

	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/repository"
)

// CartService mediates cart line-item access.
type CartService struct {
	carts repository.CartRepository
}

// NewCartService builds the service.
func NewCartService(carts repository.CartRepository) *CartService {
	return &CartService{carts: carts}
}

// AddItem stores a new cart line for the owning email.
func (s *CartService) AddItem(ctx context.Context, item *domain.CartItem) error {
	return s.carts.Create(ctx, item)
}

// ListByEmail returns the in-progress cart for the email.
func (s *CartService) ListByEmail(ctx context.Context, email string) ([]domain.CartItem, error) {
	return s.carts.ListByEmail(ctx, email)
}

// RemoveItem deletes a single cart line by id.
func (s *CartService) RemoveItem(ctx context.Context, id string) error {
	return s.carts.Delete(ctx, id)
}
