package auth

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bistro-service/internal/repository"
	apperrors "github.com/spec-kit/bistro-service/pkg/util"
)

// RequireAdmin admits only identities whose stored role is admin.
// The role is looked up on every call; tokens cannot be revoked, so a role
// embedded at issuance time is never trusted.
func RequireAdmin(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}

		user, err := users.GetByEmail(c.UserContext(), principal.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden("admin role required")
			}
			return apperrors.MapError(err)
		}
		if !user.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireSelf rejects callers whose token identity differs from the email
// named by the given route parameter, regardless of role.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		// Route params arrive percent-encoded; %40 must match @.
		value := c.Params(param)
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		if value != principal.Email {
			return apperrors.NewForbidden("access restricted to own resources")
		}
		return c.Next()
	}
}
