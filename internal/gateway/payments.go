package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/spec-kit/bistro-service/internal/config"
)

// PaymentGateway abstracts the external payment provider. The provider's own
// ledger is opaque to this service; all we need back is a client-usable
// intent secret.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (string, error)
}

type httpGateway struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPGateway builds a gateway client from configuration.
func NewHTTPGateway(cfg config.PaymentConfig) PaymentGateway {
	return &httpGateway{
		url:    cfg.GatewayURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

type intentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type intentResponse struct {
	ClientSecret string `json:"client_secret"`
}

// CreateIntent forwards the amount to the provider and returns the client
// secret the frontend uses to confirm the payment. Amounts are sent in the
// smallest currency unit.
func (g *httpGateway) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	if g.url == "" {
		return "", fmt.Errorf("payment gateway not configured")
	}

	// Round rather than truncate; 19.99 is not exactly representable and
	// would otherwise come out as 1998 cents.
	body, err := json.Marshal(intentRequest{Amount: int64(math.Round(amount * 100)), Currency: currency})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ClientSecret == "" {
		return "", fmt.Errorf("gateway response missing client secret")
	}
	return out.ClientSecret, nil
}
