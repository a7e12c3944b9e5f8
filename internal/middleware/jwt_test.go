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

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func protectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"email": middleware.CallerEmail(c),
			"role":  middleware.CallerRole(c),
		})
	}, mw...)
	return e
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15*time.Minute, time.Hour)
	tok, err := issuer.IssueAccess("a@b.c", "user")
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testAccessSecret))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.c"`)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	e := protectedEcho(middleware.JWTAuth(testAccessSecret))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	// A refresh token is signed with the other secret and must not grant access.
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 15*time.Minute, time.Hour)
	tok, err := issuer.IssueRefresh("a@b.c", "user")
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testAccessSecret))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)
	tok, err := issuer.IssueAccess("a@b.c", "user")
	require.NoError(t, err)

	e := protectedEcho(middleware.JWTAuth(testAccessSecret))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
