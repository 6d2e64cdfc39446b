package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bistro-service/internal/api/dto"
	"github.com/spec-kit/bistro-service/internal/service"
)

// UsersHandler exposes identity and token endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// IssueToken handles POST /jwt. The whole posted body is signed as the claim
// set; this endpoint performs no store lookup.
func (h *UsersHandler) IssueToken(c *fiber.Ctx) error {
	var claims map[string]any
	if err := c.BodyParser(&claims); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	token, exp, err := h.auth.IssueToken(email, claims)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token, "expires_at": exp})
}

// Login handles POST /login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Register handles POST /users. Registering an existing email is a no-op.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	result, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	if !result.Created {
		return c.JSON(fiber.Map{"message": "user already exists", "inserted_id": nil})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": userResponse(result.User),
	})
}

// List handles GET /users (admin only).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// AdminStatus handles GET /users/admin/:email (self-only).
func (h *UsersHandler) AdminStatus(c *fiber.Ctx) error {
	admin, err := h.auth.IsAdmin(c.UserContext(), emailParam(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"admin": admin})
}

// Elevate handles PATCH /users/admin/:id (admin only).
func (h *UsersHandler) Elevate(c *fiber.Ctx) error {
	if err := h.auth.ElevateToAdmin(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "role updated"})
}

// Delete handles DELETE /users/:id (admin only).
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.auth.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}
