package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/otabek-dev/auth-otp-service/internal/config"
	"github.com/otabek-dev/auth-otp-service/internal/middleware"
)

func limitedEcho(t *testing.T, cfg config.RateLimitConfig) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.NewRateLimiter(cfg, rdb))
	return e
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	e := limitedEcho(t, config.RateLimitConfig{
		Enabled: true, Limit: 2, Window: time.Minute, Prefix: "rl",
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiterDisabledIsNoop(t *testing.T) {
	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.NewRateLimiter(config.RateLimitConfig{Enabled: false}, nil))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiterSetsHeaders(t *testing.T) {
	e := limitedEcho(t, config.RateLimitConfig{
		Enabled: true, Limit: 5, Window: time.Minute, Prefix: "rl",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}
