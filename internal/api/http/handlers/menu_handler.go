package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bistro-service/internal/api/dto"
	"github.com/spec-kit/bistro-service/internal/domain"
	"github.com/spec-kit/bistro-service/internal/service"
)

// MenuHandler exposes catalog endpoints.
type MenuHandler struct {
	catalog *service.CatalogService
}

// NewMenuHandler constructs handler.
func NewMenuHandler(catalog *service.CatalogService) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

// List handles GET /menu.
func (h *MenuHandler) List(c *fiber.Ctx) error {
	items, err := h.catalog.ListMenu(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /menu (admin only).
func (h *MenuHandler) Create(c *fiber.Ctx) error {
	var req dto.MenuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Price <= 0 {
		return fiber.NewError(http.StatusBadRequest, "name and positive price required")
	}

	item := &domain.MenuItem{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Image:    req.Image,
	}
	if err := h.catalog.AddMenuItem(c.UserContext(), item); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": item})
}

// Delete handles DELETE /menu/:id (admin only).
func (h *MenuHandler) Delete(c *fiber.Ctx) error {
	if err := h.catalog.DeleteMenuItem(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "menu item deleted"})
}
