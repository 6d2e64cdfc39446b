package domain

import "time"

// MenuItem is a catalog entry customers can add to a cart.
type MenuItem struct {
	ID        string
	Name      string
	Category  string
	Price     float64
	Image     string
	CreatedAt time.Time
}
