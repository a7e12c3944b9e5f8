package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otabek-dev/auth-otp-service/internal/middleware"
	"github.com/otabek-dev/auth-otp-service/internal/token"
)

func TestRoleAllowed(t *testing.T) {
	adminOnly := map[string]bool{"admin": true}
	both := map[string]bool{"admin": true, "user": true}

	assert.False(t, middleware.RoleAllowed("user", adminOnly))
	assert.True(t, middleware.RoleAllowed("admin", adminOnly))
	assert.True(t, middleware.RoleAllowed("user", both))
	assert.False(t, middleware.RoleAllowed("", both))
	assert.False(t, middleware.RoleAllowed("root", both))
}

func roleRequest(t *testing.T, role string, guard echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15*time.Minute, time.Hour)
	tok, err := issuer.IssueAccess("a@b.c", role)
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testAccessSecret), guard)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoleDeniesOutsider(t *testing.T) {
	rec := roleRequest(t, "user", middleware.RequireRole("admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission denied")
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	rec := roleRequest(t, "user", middleware.RequireRole("admin", "user"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	// Guard without JWTAuth in front: no role in context, request is denied.
	e := protectedEcho(middleware.RequireRole("user"))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
