// Package service implements the authentication flow: an email identity
// moves from unregistered to pending-verification on Register, and from
// pending-verification to active on Verify.  Login and Refresh operate on
// the resulting account and only ever read state.
package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/otabek-dev/auth-otp-service/internal/model"
	"github.com/otabek-dev/auth-otp-service/internal/repository"
	"github.com/otabek-dev/auth-otp-service/internal/token"
	"github.com/otabek-dev/auth-otp-service/internal/utils"
)

// AccountStore is the persistence surface the auth flow needs.  Implemented
// by repository.AccountRepo; tests substitute an in-memory fake.
type AccountStore interface {
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUserWithOTP(ctx context.Context, u model.User, codeHash string, expiresAt time.Time) (uint64, error)
	ActivateUser(ctx context.Context, email string) error
	FindOTPByUser(ctx context.Context, userID uint64) (model.OTP, error)
	ReplaceOTP(ctx context.Context, userID uint64, codeHash string, expiresAt time.Time) error
	DeleteOTPByUser(ctx context.Context, userID uint64) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

// MailDispatcher hands a verification code off for delivery.  Implemented by
// the queue publisher (asynchronous) and mail.OTPDispatcher (direct SMTP).
type MailDispatcher interface {
	DispatchOTP(ctx context.Context, email, code string) error
}

// TokenIssuer is the subset of the token package the auth flow uses.
type TokenIssuer interface {
	IssueAccess(email, role string) (token.Token, error)
	IssueRefresh(email, role string) (token.Token, error)
	VerifyRefresh(raw string) (*token.Claims, error)
}

// Options tune the auth flow.  Zero values are not valid; main fills this
// from config.
type Options struct {
	OTPLength       int
	OTPTTL          time.Duration
	BcryptCost      int
	RequireVerified bool // gate Login on a verified account
}

// AuthService orchestrates the store, the token issuer and mail dispatch.
// It holds no state of its own.
type AuthService struct {
	store  AccountStore
	mail   MailDispatcher
	tokens TokenIssuer
	opts   Options
}

func NewAuthService(store AccountStore, mail MailDispatcher, tokens TokenIssuer, opts Options) *AuthService {
	return &AuthService{store: store, mail: mail, tokens: tokens, opts: opts}
}

// Result is the normalized outcome of an auth operation.  Status doubles as
// the HTTP status the handler responds with; Data carries operation-specific
// payload such as the token pair.  Infrastructure failures are returned as a
// separate error and never leak into Result.
type Result struct {
	Status  int            `json:"statusCode"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// TokenPair is the access/refresh pair handed out by Login and Refresh.
type TokenPair struct {
	Access  token.Token `json:"access"`
	Refresh token.Token `json:"refresh"`
}

// RegisterInput is the profile supplied at registration.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// VerifyInput carries an email and the code presented for it.
type VerifyInput struct {
	Email string
	OTP   string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates an inactive account and issues its verification code.
// The user and code rows are written in one transaction; mail dispatch
// happens after the commit and its failure does not undo the registration —
// the caller sees mail_pending=true and can ask for a resend via Verify.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Result, error) {
	email := normalizeEmail(in.Email)

	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return Result{Status: http.StatusConflict, Message: "email already exists"}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, err
	}

	code, err := utils.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return Result{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return Result{}, err
	}

	u := model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         normalizeRole(in.Role),
	}
	if _, err := s.store.CreateUserWithOTP(ctx, u, utils.HashOTP(code), time.Now().UTC().Add(s.opts.OTPTTL)); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Result{Status: http.StatusConflict, Message: "email already exists"}, nil
		}
		return Result{}, err
	}

	res := Result{Status: http.StatusCreated, Message: "Registered"}
	if err := s.mail.DispatchOTP(ctx, email, code); err != nil {
		log.Printf("auth: OTP mail dispatch failed for %s: %v", email, err)
		res.Data = map[string]any{"mail_pending": true}
	}
	return res, nil
}

// Verify consumes a pending verification code and activates the account.
// A wrong code leaves the code in place so the user can retry; an expired
// code is replaced with a fresh one and re-sent.
func (s *AuthService) Verify(ctx context.Context, in VerifyInput) (Result, error) {
	email := normalizeEmail(in.Email)

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{Status: http.StatusNotFound, Message: "user not found"}, nil
		}
		return Result{}, err
	}

	otp, err := s.store.FindOTPByUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return Result{Status: http.StatusNotFound, Message: "no pending verification"}, nil
		}
		return Result{}, err
	}

	if time.Now().UTC().After(otp.ExpiresAt) {
		if err := s.reissueOTP(ctx, u.ID, email); err != nil {
			return Result{}, err
		}
		return Result{Status: http.StatusBadRequest, Message: "OTP expired, a new code has been sent"}, nil
	}

	if utils.HashOTP(in.OTP) != otp.CodeHash {
		return Result{Status: http.StatusBadRequest, Message: "OTP is not valid"}, nil
	}

	if err := s.store.DeleteOTPByUser(ctx, u.ID); err != nil {
		return Result{}, err
	}
	if err := s.store.ActivateUser(ctx, email); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusOK, Message: "user is activated"}, nil
}

// reissueOTP swaps the user's expired code for a fresh one and dispatches it.
func (s *AuthService) reissueOTP(ctx context.Context, userID uint64, email string) error {
	code, err := utils.GenerateOTP(s.opts.OTPLength)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceOTP(ctx, userID, utils.HashOTP(code), time.Now().UTC().Add(s.opts.OTPTTL)); err != nil {
		return err
	}
	if err := s.mail.DispatchOTP(ctx, email, code); err != nil {
		log.Printf("auth: OTP mail dispatch failed for %s: %v", email, err)
	}
	return nil
}

// Login checks credentials and mints the token pair.  When RequireVerified
// is set, accounts that never completed verification are refused.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Result, error) {
	email := normalizeEmail(in.Email)

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{Status: http.StatusNotFound, Message: "user not found"}, nil
		}
		return Result{}, err
	}

	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return Result{Status: http.StatusBadRequest, Message: "invalid credentials"}, nil
	}
	if s.opts.RequireVerified && !u.IsActive {
		return Result{Status: http.StatusForbidden, Message: "account is not verified"}, nil
	}

	pair, err := s.issuePair(email, u.Role)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Status:  http.StatusOK,
		Message: "logged in",
		Data:    map[string]any{"access": pair.Access, "refresh": pair.Refresh},
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token with the
// same identity claims.  The refresh token itself is returned verbatim: it
// is stateless and cannot be rotated or revoked in this design.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Result, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return Result{Status: http.StatusForbidden, Message: "invalid refresh token"}, nil
	}

	access, err := s.tokens.IssueAccess(claims.Subject, claims.Role)
	if err != nil {
		return Result{}, err
	}
	refresh := token.Token{Value: raw}
	if claims.ExpiresAt != nil {
		refresh.ExpiresAt = claims.ExpiresAt.Time
	}
	return Result{
		Status:  http.StatusOK,
		Message: "token refreshed",
		Data:    map[string]any{"access": access, "refresh": refresh},
	}, nil
}

// AccountSummary is the sanitized account view exposed to admins.
type AccountSummary struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// ListAccounts returns every account without credential material.
func (s *AuthService) ListAccounts(ctx context.Context) ([]AccountSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountSummary, 0, len(users))
	for _, u := range users {
		out = append(out, AccountSummary{
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			IsActive: u.IsActive,
		})
	}
	return out, nil
}

func (s *AuthService) issuePair(email, role string) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(email, role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(email, role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeRole restricts the posted role to the known set, defaulting to
// "user" for anything unrecognized.
func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case model.RoleAdmin:
		return model.RoleAdmin
	default:
		return model.RoleUser
	}
}
