package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bistro-service/internal/api/http"
	"github.com/spec-kit/bistro-service/internal/api/http/handlers"
	"github.com/spec-kit/bistro-service/internal/auth"
	"github.com/spec-kit/bistro-service/internal/config"
	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/events"
	"github.com/spec-kit/bistro-service/internal/observability"
	"github.com/spec-kit/bistro-service/internal/service"
	"github.com/spec-kit/bistro-service/internal/testutil"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
)

type stubGateway struct {
	secret string
	err    error
}

func (g *stubGateway) CreateIntent(context.Context, float64, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.secret, nil
}

type fixture struct {
	app      *fiber.App
	authSvc  *service.AuthService
	users    *testutil.InMemoryUserRepo
	carts    *testutil.InMemoryCartRepo
	payments *testutil.InMemoryPaymentRepo
}

func newFixture(t *testing.T, gw *stubGateway) *fixture {
	t.Helper()

	cfg := config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		Payment: config.PaymentConfig{Currency: "usd"},
	}
	users := testutil.NewInMemoryUserRepo()
	menu := testutil.NewInMemoryMenuRepo()
	carts := testutil.NewInMemoryCartRepo()
	payments := &testutil.InMemoryPaymentRepo{}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authSvc := service.NewAuthService(cfg, users, dispatcher)
	catalogSvc := service.NewCatalogService(menu, nil, logger)
	cartSvc := service.NewCartService(carts)
	paymentSvc := service.NewPaymentService(cfg, payments, carts, gw, dispatcher, logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("bistro-service", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authSvc),
		Menu:           handlers.NewMenuHandler(catalogSvc),
		Carts:          handlers.NewCartsHandler(cartSvc),
		Payments:       handlers.NewPaymentsHandler(paymentSvc),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager()),
		UserRepo:       users,
	})

	return &fixture{app: app, authSvc: authSvc, users: users, carts: carts, payments: payments}
}

func (f *fixture) tokenFor(t *testing.T, email string) string {
	t.Helper()
	token, _, err := f.authSvc.IssueToken(email, nil)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func (f *fixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestIssueTokenEndpoint(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})

	resp := f.request(t, http.MethodPost, "/jwt", "", map[string]string{"email": "a@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("expected token in response")
	}

	claims, err := f.authSvc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
}

func TestProtectedRouteAuthStates(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.users.SeedUser(domain.User{Email: "admin@x.com", Role: domain.RoleAdmin})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer value", "Token abc", http.StatusBadRequest},
		{"bearer with empty token", "Bearer ", http.StatusBadRequest},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := f.app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestAdminGateRederivesRoleFromStore(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.users.SeedUser(domain.User{Email: "admin@x.com", Role: domain.RoleAdmin})
	f.users.SeedUser(domain.User{Email: "guest@x.com", Role: domain.RoleGuest})

	// Valid token, stored role guest.
	resp := f.request(t, http.MethodGet, "/users", f.tokenFor(t, "guest@x.com"), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("guest expected 403, got %d", resp.StatusCode)
	}

	// Valid token, no stored record at all: rejected, never default-admit.
	resp = f.request(t, http.MethodGet, "/users", f.tokenFor(t, "ghost@x.com"), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unknown identity expected 403, got %d", resp.StatusCode)
	}

	resp = f.request(t, http.MethodGet, "/users", f.tokenFor(t, "admin@x.com"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", resp.StatusCode)
	}
}

func TestAdminStatusIsSelfOnly(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.users.SeedUser(domain.User{Email: "admin@x.com", Role: domain.RoleAdmin})
	f.users.SeedUser(domain.User{Email: "guest@x.com", Role: domain.RoleGuest})

	// Own email passes regardless of role.
	resp := f.request(t, http.MethodGet, "/users/admin/guest@x.com", f.tokenFor(t, "guest@x.com"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("self lookup expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if admin, _ := body["admin"].(bool); admin {
		t.Fatal("guest must not report admin")
	}

	// Another identity's email is rejected even for an admin caller.
	resp = f.request(t, http.MethodGet, "/users/admin/guest@x.com", f.tokenFor(t, "admin@x.com"), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-identity lookup expected 403, got %d", resp.StatusCode)
	}
}

func TestSelfAccessMatchesEncodedEmailParam(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.users.SeedUser(domain.User{Email: "guest@x.com", Role: domain.RoleGuest})

	resp := f.request(t, http.MethodGet, "/users/admin/guest%40x.com", f.tokenFor(t, "guest@x.com"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encoded self lookup expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if admin, ok := body["admin"].(bool); !ok || admin {
		t.Fatalf("expected admin:false for stored guest, got %v", body)
	}
}

func TestIssueTokenCarriesPostedClaims(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})

	resp := f.request(t, http.MethodPost, "/jwt", "", map[string]any{
		"email": "a@x.com",
		"name":  "Ada",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("expected token in response")
	}

	raw := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, raw, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}); err != nil {
		t.Fatalf("parse raw claims: %v", err)
	}
	if raw["name"] != "Ada" {
		t.Fatalf("posted claim not carried through: %v", raw["name"])
	}
}

func TestRegisterDuplicateIsNoop(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})

	resp := f.request(t, http.MethodPost, "/users", "", map[string]string{"name": "Ada", "email": "ada@x.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first registration expected 201, got %d", resp.StatusCode)
	}

	resp = f.request(t, http.MethodPost, "/users", "", map[string]string{"name": "Ada", "email": "ada@x.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate registration expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "user already exists" {
		t.Fatalf("unexpected duplicate response: %v", body)
	}
}

func TestReconcileEndpoint(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.carts.Seed("u@x.com", "11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222")

	resp := f.request(t, http.MethodPost, "/payments", "", map[string]any{
		"email":         "u@x.com",
		"price":         42.50,
		"transactionId": "tx_99",
		"cartItemIds":   []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["removed_count"] != float64(2) {
		t.Fatalf("expected removed_count 2, got %v", body["removed_count"])
	}
	if f.payments.Count() != 1 {
		t.Fatalf("expected 1 payment record, got %d", f.payments.Count())
	}
}

func TestReconcileRejectsMalformedCartIDs(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.carts.Seed("u@x.com", "11111111-1111-1111-1111-111111111111")

	resp := f.request(t, http.MethodPost, "/payments", "", map[string]any{
		"email":         "u@x.com",
		"price":         10,
		"transactionId": "tx_bad",
		"cartItemIds":   []string{"not-a-uuid"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	// The bad input must be stopped before anything durable happens.
	if f.payments.Count() != 0 {
		t.Fatalf("expected no payment record, got %d", f.payments.Count())
	}
	remaining, _ := f.carts.ListByEmail(context.Background(), "u@x.com")
	if len(remaining) != 1 {
		t.Fatalf("expected cart untouched, got %d items", len(remaining))
	}
}

func TestPaymentHistoryIsSelfOnly(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test"})
	f.users.SeedUser(domain.User{Email: "u@x.com", Role: domain.RoleGuest})

	resp := f.request(t, http.MethodGet, "/payments/u@x.com", f.tokenFor(t, "u@x.com"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own history expected 200, got %d", resp.StatusCode)
	}

	resp = f.request(t, http.MethodGet, "/payments/u@x.com", f.tokenFor(t, "snoop@x.com"), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign history expected 403, got %d", resp.StatusCode)
	}

	resp = f.request(t, http.MethodGet, "/payments/u@x.com", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous history expected 401, got %d", resp.StatusCode)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t, &stubGateway{secret: "cs_test_456"})

	resp := f.request(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 25})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["clientSecret"] != "cs_test_456" {
		t.Fatalf("unexpected client secret: %v", body["clientSecret"])
	}
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	f := newFixture(t, &stubGateway{err: errors.New("connection refused")})

	resp := f.request(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 25})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errObj, _ := body["error"].(map[string]any)
	if errObj["code"] != "UPSTREAM_GATEWAY" {
		t.Fatalf("unexpected error body: %v", body)
	}
}
