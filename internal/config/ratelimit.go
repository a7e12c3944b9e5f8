package config

import "time"

// RateLimitConfig defines settings for the fixed-window request limiter that
// protects the public auth endpoints (register, login, verify, refresh).
// Limit is the number of requests allowed per Window for a single key.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults are deliberately tight: auth endpoints are the abuse surface of an
// OTP flow, and 20 requests per minute per client is plenty for humans.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Limit:   envInt("RATE_LIMIT_REQUESTS", 20),
		Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}
