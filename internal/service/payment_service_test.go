package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/bistro-service/internal/config"
	"github.com/spec-kit/bistro-service/internal/events"
	"github.com/spec-kit/bistro-service/internal/observability"
	"github.com/spec-kit/bistro-service/internal/testutil"
	apperrors "github.com/spec-kit/bistro-service/pkg/util"
)

func newPaymentFixture() (*PaymentService, *testutil.InMemoryPaymentRepo, *testutil.InMemoryCartRepo, *capturingDispatcher, *observability.Metrics) {
	cfg := config.Config{Payment: config.PaymentConfig{Currency: "usd"}}
	payments := &testutil.InMemoryPaymentRepo{}
	carts := testutil.NewInMemoryCartRepo()
	dispatcher := &capturingDispatcher{}
	metrics := observability.NewMetrics()
	svc := NewPaymentService(cfg, payments, carts, &fakeGateway{secret: "cs_test_123"}, dispatcher, zap.NewNop(), metrics)
	return svc, payments, carts, dispatcher, metrics
}

func TestReconcileRemovesExactlyCoveredItems(t *testing.T) {
	svc, payments, carts, dispatcher, _ := newPaymentFixture()
	carts.Seed("u@x.com", "c1", "c2", "c3")
	carts.Seed("other@x.com", "c4")

	result, err := svc.Reconcile(context.Background(), ReconcileInput{
		Email:       "u@x.com",
		Amount:      42.50,
		GatewayRef:  "tx_1",
		CartItemIDs: []string{"c1", "c2", "c3"},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.RemovedCount != 3 {
		t.Fatalf("expected 3 removals, got %d", result.RemovedCount)
	}
	if result.PaymentID == "" {
		t.Fatal("expected payment id")
	}

	history, err := payments.ListByEmail(context.Background(), "u@x.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one payment record, got %d", len(history))
	}
	if len(history[0].CartItemIDs) != 3 {
		t.Fatalf("expected payment to reference 3 cart ids, got %d", len(history[0].CartItemIDs))
	}
	if history[0].Currency != "usd" {
		t.Fatalf("expected default currency, got %s", history[0].Currency)
	}

	remaining, _ := carts.ListByEmail(context.Background(), "other@x.com")
	if len(remaining) != 1 {
		t.Fatal("unrelated cart item must survive reconciliation")
	}
	if got := dispatcher.byType(events.EventPaymentRecorded); len(got) != 1 {
		t.Fatalf("expected one payment_recorded event, got %d", len(got))
	}
}

func TestReconcileRetryIsIdempotentOnDelete(t *testing.T) {
	svc, payments, carts, _, _ := newPaymentFixture()
	carts.Seed("u@x.com", "c1", "c2", "c3")

	input := ReconcileInput{
		Email:       "u@x.com",
		Amount:      42.50,
		GatewayRef:  "tx_1",
		CartItemIDs: []string{"c1", "c2", "c3"},
	}

	first, err := svc.Reconcile(context.Background(), input)
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	second, err := svc.Reconcile(context.Background(), input)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if first.RemovedCount != 3 {
		t.Fatalf("first call expected 3 removals, got %d", first.RemovedCount)
	}
	if second.RemovedCount != 0 {
		t.Fatalf("second call expected 0 removals, got %d", second.RemovedCount)
	}
	// The insert stays non-idempotent: each call appends its own record.
	if payments.Count() != 2 {
		t.Fatalf("expected 2 payment records, got %d", payments.Count())
	}
	if first.PaymentID == second.PaymentID {
		t.Fatal("expected distinct payment ids")
	}
}

func TestReconcileEmptyCartIDsRecordsZeroRemovalPayment(t *testing.T) {
	svc, payments, _, _, _ := newPaymentFixture()

	result, err := svc.Reconcile(context.Background(), ReconcileInput{
		Email:      "u@x.com",
		Amount:     10,
		GatewayRef: "tx_2",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.RemovedCount != 0 {
		t.Fatalf("expected 0 removals, got %d", result.RemovedCount)
	}
	if payments.Count() != 1 {
		t.Fatalf("expected payment record despite empty cart ids, got %d", payments.Count())
	}
}

func TestReconcileSurfacesIncompleteCleanup(t *testing.T) {
	svc, payments, carts, dispatcher, metrics := newPaymentFixture()
	carts.Seed("u@x.com", "c1", "c2")
	carts.DeleteErr = errors.New("store unavailable")

	result, err := svc.Reconcile(context.Background(), ReconcileInput{
		Email:       "u@x.com",
		Amount:      20,
		GatewayRef:  "tx_3",
		CartItemIDs: []string{"c1", "c2"},
	})
	// The payment is durable, so the client call still succeeds.
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.RemovedCount != 0 {
		t.Fatalf("expected 0 removals on failed cleanup, got %d", result.RemovedCount)
	}
	if payments.Count() != 1 {
		t.Fatal("payment record must survive cleanup failure")
	}
	if got := dispatcher.byType(events.EventReconciliationIncomplete); len(got) != 1 {
		t.Fatalf("expected one reconciliation_incomplete event, got %d", len(got))
	}
	if metrics.ReconciliationGaps() != 1 {
		t.Fatalf("expected gap counter 1, got %d", metrics.ReconciliationGaps())
	}

	// Retrying just the delete succeeds once the store is back.
	carts.DeleteErr = nil
	removed, err := carts.DeleteByIDs(context.Background(), []string{"c1", "c2"})
	if err != nil || removed != 2 {
		t.Fatalf("expected retry to remove 2, got %d err=%v", removed, err)
	}
}

func TestConcurrentReconcileNeverRemovesMoreThanExisted(t *testing.T) {
	svc, payments, carts, _, _ := newPaymentFixture()
	ids := []string{"c1", "c2", "c3", "c4", "c5"}
	carts.Seed("u@x.com", ids...)

	var wg sync.WaitGroup
	results := make([]*ReconcileResult, 2)
	inputs := []ReconcileInput{
		{Email: "u@x.com", Amount: 10, GatewayRef: "tx_a", CartItemIDs: []string{"c1", "c2", "c3"}},
		{Email: "u@x.com", Amount: 12, GatewayRef: "tx_b", CartItemIDs: []string{"c2", "c3", "c4", "c5"}},
	}
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Reconcile(context.Background(), inputs[i])
			if err != nil {
				t.Errorf("Reconcile %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	var total int64
	for _, result := range results {
		if result == nil {
			t.Fatal("missing result")
		}
		total += result.RemovedCount
	}
	if total > int64(len(ids)) {
		t.Fatalf("removed %d items, only %d existed", total, len(ids))
	}
	// Each insert is independent: both payments must exist.
	if payments.Count() != 2 {
		t.Fatalf("expected 2 payment records, got %d", payments.Count())
	}
}

func TestCreateIntentMapsGatewayFailure(t *testing.T) {
	cfg := config.Config{Payment: config.PaymentConfig{Currency: "usd"}}
	svc := NewPaymentService(cfg, &testutil.InMemoryPaymentRepo{}, testutil.NewInMemoryCartRepo(), &fakeGateway{err: errors.New("connection refused")}, &capturingDispatcher{}, zap.NewNop(), observability.NewMetrics())

	_, err := svc.CreateIntent(context.Background(), 25)
	if err == nil {
		t.Fatal("expected gateway error")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "UPSTREAM_GATEWAY" {
		t.Fatalf("unexpected error code: %s", domainErr.Code)
	}
	if domainErr.HTTPStatus != 502 {
		t.Fatalf("unexpected status: %d", domainErr.HTTPStatus)
	}
}

func TestCreateIntentReturnsClientSecret(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture()

	secret, err := svc.CreateIntent(context.Background(), 25)
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if secret != "cs_test_123" {
		t.Fatalf("unexpected client secret: %s", secret)
	}
}
