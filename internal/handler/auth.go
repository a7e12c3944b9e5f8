package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/otabek-dev/auth-otp-service/internal/middleware"
	"github.com/otabek-dev/auth-otp-service/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.  All business rules
// live in the service; the handler only binds requests, bounds the call with
// a timeout and writes the normalized result back.
type AuthHandler struct {
	Svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // user | admin; anything else becomes user
}
type verifyReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register: create an inactive account and email its verification code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return internalError(c, "register", err)
	}
	return c.JSON(res.Status, res)
}

// Verify: consume the emailed code and activate the account.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Verify(ctx, service.VerifyInput{Email: req.Email, OTP: req.OTP})
	if err != nil {
		return internalError(c, "verify", err)
	}
	return c.JSON(res.Status, res)
}

// Login: check credentials and return the token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Login(ctx, service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return internalError(c, "login", err)
	}
	return c.JSON(res.Status, res)
}

// Refresh: exchange a valid refresh token for a new access token.  The
// refresh token is returned unchanged.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return internalError(c, "refresh", err)
	}
	return c.JSON(res.Status, res)
}

// Me: simple protected endpoint returning the caller's identity claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"email": middleware.CallerEmail(c),
		"role":  middleware.CallerRole(c),
	})
}

// ListUsers: admin-only account listing without credential material.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	accounts, err := h.Svc.ListAccounts(ctx)
	if err != nil {
		return internalError(c, "list users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": accounts})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// internalError logs the underlying failure and responds with an opaque 500.
// Store and broker errors never reach the client verbatim.
func internalError(c echo.Context, op string, err error) error {
	log.Printf("auth handler: %s failed: %v", op, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
