package domain

import "time"

// Payment records a completed checkout against the external gateway.
// Rows are append-only; refunds are out of scope.
type Payment struct {
	ID          string
	Email       string
	Amount      float64
	Currency    string
	GatewayRef  string
	CartItemIDs []string
	CreatedAt   time.Time
}
