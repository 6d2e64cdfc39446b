package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bistro-service/internal/api/dto"
	"github.com/spec-kit/bistro-service/internal/domain"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// emailParam returns the named route parameter with percent-encoding undone,
// so /users/admin/a%40x.com resolves the same identity as a@x.com.
func emailParam(c *fiber.Ctx, param string) string {
	value := c.Params(param)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
