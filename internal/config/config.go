package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Access and refresh tokens are signed with
// independent secrets and independent lifetimes; both invariants are
// enforced in Load.
type Config struct {
	Env                  string        // application environment (e.g. "dev", "prod")
	Port                 string        // HTTP port to listen on
	DBUser               string        // database username
	DBPass               string        // database password (optional)
	DBHost               string        // database host address
	DBPort               string        // database port number
	DBName               string        // database name
	AccessSecret         string        // secret used to sign access tokens
	RefreshSecret        string        // secret used to sign refresh tokens
	AccessTTLMin         int           // access token time-to-live in minutes
	RefreshTTLDays       int           // refresh token time-to-live in days
	BcryptCost           int           // bcrypt cost for password hashing
	OTPLength            int           // number of digits in a verification code
	OTPTTL               time.Duration // how long a verification code stays valid
	LoginRequireVerified bool          // when true, unverified accounts cannot log in
	MailAsync            bool          // when true, OTP mail goes through the message broker
	SMTPHost             string        // SMTP server host; empty disables real delivery
	SMTPPort             string        // SMTP server port
	SMTPUser             string        // SMTP auth username
	SMTPPass             string        // SMTP auth password
	SMTPFrom             string        // sender address for outgoing mail
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Load also rejects
// configurations that would break token safety: identical access/refresh
// secrets, or an access lifetime that is not strictly shorter than the
// refresh lifetime.
func Load() Config {
	cfg := Config{
		Env:                  must("APP_ENV"),
		Port:                 must("APP_PORT"),
		DBUser:               must("DB_USER"),
		DBPass:               os.Getenv("DB_PASS"), // empty allowed
		DBHost:               must("DB_HOST"),
		DBPort:               must("DB_PORT"),
		DBName:               must("DB_NAME"),
		AccessSecret:         must("JWT_ACCESS_SECRET"),
		RefreshSecret:        must("JWT_REFRESH_SECRET"),
		AccessTTLMin:         mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:       mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:           envInt("BCRYPT_COST", 10),
		OTPLength:            envInt("OTP_LENGTH", 6),
		OTPTTL:               envDur("OTP_TTL", 10*time.Minute),
		LoginRequireVerified: envBool("LOGIN_REQUIRE_VERIFIED", true),
		MailAsync:            envBool("MAIL_ASYNC", true),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             envStr("SMTP_PORT", "587"),
		SMTPUser:             os.Getenv("SMTP_USER"),
		SMTPPass:             os.Getenv("SMTP_PASS"),
		SMTPFrom:             os.Getenv("SMTP_FROM"),
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if time.Duration(cfg.AccessTTLMin)*time.Minute >= time.Duration(cfg.RefreshTTLDays)*24*time.Hour {
		log.Fatal("access token TTL must be shorter than refresh token TTL")
	}
	if cfg.OTPLength < 4 {
		cfg.OTPLength = 4
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
