package dto

// CartItemRequest payload for adding a line to a cart.
type CartItemRequest struct {
	Email      string  `json:"email"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity,omitempty"`
}
