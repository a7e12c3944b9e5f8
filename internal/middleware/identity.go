package middleware

// identity.go holds the accessors for caller identity set by JWTAuth.  The
// rate limiter uses these to key buckets per caller, and handlers use them
// to answer "who am I" requests.

import "github.com/labstack/echo/v4"

// CallerEmail returns the authenticated caller's email, or "" if the request
// is unauthenticated.
func CallerEmail(c echo.Context) string {
	if v, ok := c.Get(ContextEmail).(string); ok {
		return v
	}
	return ""
}

// CallerRole returns the authenticated caller's role, or "" if the request
// is unauthenticated.
func CallerRole(c echo.Context) string {
	if v, ok := c.Get(ContextRole).(string); ok {
		return v
	}
	return ""
}
