package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// RequireTechnician admits technicians and admins.
func RequireTechnician() fiber.Handler {
	return requireRole("technician role required", domain.IsTechnicianTier)
}

// RequireAdmin admits admins only.
func RequireAdmin() fiber.Handler {
	return requireRole("admin role required", domain.IsAdmin)
}

func requireRole(message string, allowed func(domain.Actor) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !allowed(principal.Actor()) {
			return apperrors.NewForbidden(message)
		}
		return c.Next()
	}
}
