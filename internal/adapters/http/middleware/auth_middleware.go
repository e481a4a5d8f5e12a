package middleware

import (
	"strings"

	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/pkg/jwt"
	"github.com/simha10/survey-ops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired validates the bearer token and stores the caller's identity
// in locals ("userID", "username", "role", and "wardID" for supervisors)
// for downstream handlers.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := jwt.ValidateAccessToken(parts[1], secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Token expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)
		if claims.WardID != nil {
			c.Locals("wardID", *claims.WardID)
		}
		return c.Next()
	}
}

// RequireRoles allows only callers whose token role is in the given set
func RequireRoles(roles ...domain.Role) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[string(role)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Missing role claim")
		}
		if _, ok := allowed[role]; !ok {
			return response.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// AdminOnly restricts a route to ADMIN and SUPERADMIN
func AdminOnly() fiber.Handler {
	return RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin)
}

// SupervisorOrAdmin restricts a route to SUPERVISOR, ADMIN, and SUPERADMIN
func SupervisorOrAdmin() fiber.Handler {
	return RequireRoles(domain.RoleSupervisor, domain.RoleAdmin, domain.RoleSuperAdmin)
}
