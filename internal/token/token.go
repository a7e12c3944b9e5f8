// Package token signs and verifies the access/refresh JWT pair.  Access and
// refresh tokens carry the same claim shape ({sub: email, role}) but are
// always signed with distinct secrets and distinct lifetimes, so one can
// never be presented in place of the other.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify* when a token fails signature,
// structure or expiry checks.  Callers treat every variant the same way, so
// the detail is folded into one sentinel.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both token kinds.  Subject holds the
// user's email.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Token is a signed JWT string together with its expiry, which clients can
// use to schedule refreshes without decoding the token themselves.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// Issuer mints and verifies token pairs.  Construct with NewIssuer; the zero
// value is not usable.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for the given identity.
func (i *Issuer) IssueAccess(email, role string) (Token, error) {
	return sign(email, role, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the given identity.
func (i *Issuer) IssueRefresh(email, role string) (Token, error) {
	return sign(email, role, i.refreshSecret, i.refreshTTL)
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.  The call
// is synchronous: any signature or expiry failure comes back as a regular
// error result the caller can act on.
func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return verify(raw, i.refreshSecret)
}

func sign(email, role string, secret []byte, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

func verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
