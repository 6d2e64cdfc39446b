// Package testutil provides in-memory repository implementations used by
// tests across packages. They honor the same contracts as the Postgres-backed
// repositories, including pgx.ErrNoRows for missing rows.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bistro-service/internal/domain"
)

// InMemoryUserRepo is a map-backed repository.UserRepository.
type InMemoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

// NewInMemoryUserRepo builds an empty user store.
func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{byEmail: make(map[string]*domain.User)}
}

// SeedUser inserts a user directly, assigning an id when absent.
func (r *InMemoryUserRepo) SeedUser(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
	}
	clone := user
	r.byEmail[user.Email] = &clone
	return user
}

func (r *InMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return errors.New("duplicate email")
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *InMemoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byEmail {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *InMemoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.byEmail))
	for _, user := range r.byEmail {
		users = append(users, *user)
	}
	return users, nil
}

func (r *InMemoryUserRepo) SetRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byEmail {
		if user.ID == id {
			user.Role = role
			user.UpdatedAt = time.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *InMemoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, user := range r.byEmail {
		if user.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// InMemoryCartRepo is a map-backed repository.CartRepository. Setting
// DeleteErr makes batch deletes fail, which tests use to exercise the
// partial-reconciliation path.
type InMemoryCartRepo struct {
	mu        sync.Mutex
	items     map[string]domain.CartItem
	DeleteErr error
}

// NewInMemoryCartRepo builds an empty cart store.
func NewInMemoryCartRepo() *InMemoryCartRepo {
	return &InMemoryCartRepo{items: make(map[string]domain.CartItem)}
}

// Seed inserts cart lines with fixed ids for the owning email.
func (r *InMemoryCartRepo) Seed(email string, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.items[id] = domain.CartItem{ID: id, Email: email, Quantity: 1, CreatedAt: time.Now()}
	}
}

func (r *InMemoryCartRepo) Create(_ context.Context, item *domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = uuid.NewString()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	item.CreatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

func (r *InMemoryCartRepo) ListByEmail(_ context.Context, email string) ([]domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []domain.CartItem
	for _, item := range r.items {
		if item.Email == email {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *InMemoryCartRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func (r *InMemoryCartRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return 0, r.DeleteErr
	}
	var removed int64
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

// InMemoryPaymentRepo is a slice-backed repository.PaymentRepository.
type InMemoryPaymentRepo struct {
	mu       sync.Mutex
	payments []domain.Payment
}

func (r *InMemoryPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *InMemoryPaymentRepo) ListByEmail(_ context.Context, email string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, payment := range r.payments {
		if payment.Email == email {
			out = append(out, payment)
		}
	}
	return out, nil
}

// Count reports how many payments were recorded.
func (r *InMemoryPaymentRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

// InMemoryMenuRepo is a map-backed repository.MenuRepository.
type InMemoryMenuRepo struct {
	mu    sync.Mutex
	items map[string]domain.MenuItem
}

// NewInMemoryMenuRepo builds an empty catalog store.
func NewInMemoryMenuRepo() *InMemoryMenuRepo {
	return &InMemoryMenuRepo{items: make(map[string]domain.MenuItem)}
}

func (r *InMemoryMenuRepo) Create(_ context.Context, item *domain.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = uuid.NewString()
	item.CreatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

func (r *InMemoryMenuRepo) List(_ context.Context) ([]domain.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items, nil
}

func (r *InMemoryMenuRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}
