package domain

import "time"

// CartItem is a pending order line owned by the purchasing identity.
// It is destroyed individually on removal or in bulk once paid.
type CartItem struct {
	ID         string
	Email      string
	MenuItemID string
	Name       string
	Price      float64
	Quantity   int
	CreatedAt  time.Time
}
