package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleAllowed reports whether a caller role appears in the allow-list.  Pure
// predicate with no I/O; the middleware below is its only binding to HTTP.
func RoleAllowed(role string, allowed map[string]bool) bool {
	return allowed[role]
}

// RequireRole returns a middleware that enforces that the authenticated
// caller holds one of the given roles.  It reads the role placed in context
// by JWTAuth; a missing or unlisted role aborts the request with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !RoleAllowed(role, allowed) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
			}
			return next(c)
		}
	}
}
