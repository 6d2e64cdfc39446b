package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered           EventType = "user_registered"
	EventPaymentRecorded          EventType = "payment_recorded"
	EventReconciliationIncomplete EventType = "reconciliation_incomplete"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	GatewayRef   string  `json:"gateway_ref"`
	RemovedCount int64   `json:"removed_count"`
}

// ReconciliationIncompletePayload marks a payment whose cart cleanup failed.
// The payment row is already durable; operators retry the delete out-of-band.
type ReconciliationIncompletePayload struct {
	PaymentID   string   `json:"payment_id"`
	CartItemIDs []string `json:"cart_item_ids"`
	Reason      string   `json:"reason"`
}
