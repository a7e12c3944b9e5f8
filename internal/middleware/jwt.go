package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/otabek-dev/auth-otp-service/internal/token"
)

// Context keys populated by JWTAuth for downstream middleware and handlers.
const (
	ContextEmail = "email"
	ContextRole  = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject (email) and role claims into the request
// context.  The secret must be the access-token signing secret; refresh
// tokens are rejected here because they are signed with a different one.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := &token.Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				// Reject anything but HMAC so a token signed with "none" or an
				// asymmetric key cannot slip through.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return key, nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextEmail, claims.Subject)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}
