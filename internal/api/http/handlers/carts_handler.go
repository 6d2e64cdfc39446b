package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bistro-service/internal/api/dto"
	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/service"
)

// CartsHandler exposes cart endpoints.
type CartsHandler struct {
	carts *service.CartService
}

// NewCartsHandler constructs handler.
func NewCartsHandler(carts *service.CartService) *CartsHandler {
	return &CartsHandler{carts: carts}
}

// List handles GET /carts?email=.
func (h *CartsHandler) List(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email query parameter required")
	}
	items, err := h.carts.ListByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /carts.
func (h *CartsHandler) Create(c *fiber.Ctx) error {
	var req dto.CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.MenuItemID == "" {
		return fiber.NewError(http.StatusBadRequest, "email and menu_item_id required")
	}

	item := &domain.CartItem{
		Email:      req.Email,
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		Price:      req.Price,
		Quantity:   req.Quantity,
	}
	if err := h.carts.AddItem(c.UserContext(), item); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": item})
}

// Delete handles DELETE /carts/:id.
func (h *CartsHandler) Delete(c *fiber.Ctx) error {
	if err := h.carts.RemoveItem(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "cart item deleted"})
}
