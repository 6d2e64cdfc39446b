package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/repository"
)

const (
	menuCacheKey = "menu:catalog"
	menuCacheTTL = 5 * time.Minute
)

// CatalogService serves the menu catalog with a Redis read-through cache.
// The cache is best-effort; any cache failure falls back to Postgres.
type CatalogService struct {
	menu   repository.MenuRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewCatalogService builds the service. A nil cache client disables caching.
func NewCatalogService(menu repository.MenuRepository, cache *redis.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{menu: menu, cache: cache, logger: logger}
}

// ListMenu returns the full catalog, served from cache when warm.
func (s *CatalogService) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, menuCacheKey).Bytes()
		if err == nil {
			var items []domain.MenuItem
			if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
				return items, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("menu cache read failed", zap.Error(err))
		}
	}

	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, menuCacheKey, raw, menuCacheTTL).Err(); err != nil {
				s.logger.Warn("menu cache write failed", zap.Error(err))
			}
		}
	}
	return items, nil
}

// AddMenuItem persists a new catalog entry and invalidates the cache.
func (s *CatalogService) AddMenuItem(ctx context.Context, item *domain.MenuItem) error {
	if err := s.menu.Create(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteMenuItem removes a catalog entry and invalidates the cache.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, id string) error {
	if err := s.menu.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, menuCacheKey).Err(); err != nil {
		s.logger.Warn("menu cache invalidation failed", zap.Error(err))
	}
}
