package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolveit/helpdesk/internal/domain"
)

// RequireRole ensures the principal carries one of the allowed roles.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff ensures the principal is an agent or administrator.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleAgent)
}

// RequireAdmin ensures the principal is an administrator.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin)
}

// RequireAuthenticated ensures any principal is present.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}
