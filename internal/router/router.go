package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/otabek-dev/auth-otp-service/internal/handler"
	"github.com/otabek-dev/auth-otp-service/internal/middleware"
	"github.com/otabek-dev/auth-otp-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires all authentication routes.  Unauthenticated operations
// live under /v1/auth behind the rate limiter; protected endpoints live
// under /v1 and require a valid access token.  accessSecret must be the
// access-token signing secret used by the issuer.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string, limiter echo.MiddlewareFunc) {
	// Public group: register, verify, login, refresh.  These are the abuse
	// surface of the OTP flow, so the limiter sits on the whole group.
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/verify", a.Verify)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	// Protected group: any authenticated user.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(accessSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.GET("/me", a.Me)

	// Admin group: role guard narrowed to admin only.
	adm := e.Group("/v1/admin")
	adm.Use(middleware.JWTAuth(accessSecret))
	adm.Use(middleware.RequireRole(model.RoleAdmin))
	adm.GET("/users", a.ListUsers)
}
