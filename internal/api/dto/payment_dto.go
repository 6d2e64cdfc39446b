package dto

// PaymentIntentRequest forwards the charge amount to the gateway.
type PaymentIntentRequest struct {
	Price float64 `json:"price"`
}

// PaymentIntentResponse carries the gateway's client secret back to the
// frontend.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentRequest reports a confirmed gateway payment and the cart items it
// covers.
type PaymentRequest struct {
	Email         string   `json:"email"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency,omitempty"`
	TransactionID string   `json:"transactionId"`
	CartItemIDs   []string `json:"cartItemIds"`
}

// PaymentResponse reports the recorded payment and removal count.
type PaymentResponse struct {
	PaymentID    string `json:"payment_id"`
	RemovedCount int64  `json:"removed_count"`
}
