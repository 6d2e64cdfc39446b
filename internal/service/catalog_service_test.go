package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/testutil"
)

func TestCatalogListWithoutCache(t *testing.T) {
	menu := testutil.NewInMemoryMenuRepo()
	svc := NewCatalogService(menu, nil, zap.NewNop())

	item := &domain.MenuItem{Name: "Margherita", Category: "pizza", Price: 11.50}
	if err := svc.AddMenuItem(context.Background(), item); err != nil {
		t.Fatalf("AddMenuItem: %v", err)
	}

	items, err := svc.ListMenu(context.Background())
	if err != nil {
		t.Fatalf("ListMenu: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Margherita" {
		t.Fatalf("unexpected catalog: %+v", items)
	}

	if err := svc.DeleteMenuItem(context.Background(), item.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	items, err = svc.ListMenu(context.Background())
	if err != nil {
		t.Fatalf("ListMenu after delete: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty catalog, got %d items", len(items))
	}
}
