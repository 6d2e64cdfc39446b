package dto

// MenuItemRequest payload for new catalog entries.
type MenuItemRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
}
