package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// RequireAdmin ensures the caller carries the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if identity.Role != domain.RoleAdmin {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
