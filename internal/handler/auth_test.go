package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otabek-dev/auth-otp-service/internal/handler"
	"github.com/otabek-dev/auth-otp-service/internal/model"
	"github.com/otabek-dev/auth-otp-service/internal/repository"
	"github.com/otabek-dev/auth-otp-service/internal/router"
	"github.com/otabek-dev/auth-otp-service/internal/service"
	"github.com/otabek-dev/auth-otp-service/internal/token"
)

// memStore is a minimal in-memory AccountStore for exercising the HTTP layer.
type memStore struct {
	users  map[string]model.User
	otps   map[uint64]model.OTP
	nextID uint64
}

func newMemStore() *memStore {
	return &memStore{users: map[string]model.User{}, otps: map[uint64]model.OTP{}}
}

func (f *memStore) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *memStore) CreateUserWithOTP(ctx context.Context, u model.User, codeHash string, expiresAt time.Time) (uint64, error) {
	if _, ok := f.users[u.Email]; ok {
		return 0, repository.ErrEmailExists
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.Email] = u
	f.otps[u.ID] = model.OTP{UserID: u.ID, CodeHash: codeHash, ExpiresAt: expiresAt}
	return u.ID, nil
}

func (f *memStore) ActivateUser(ctx context.Context, email string) error {
	u, ok := f.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = true
	f.users[email] = u
	return nil
}

func (f *memStore) FindOTPByUser(ctx context.Context, userID uint64) (model.OTP, error) {
	o, ok := f.otps[userID]
	if !ok {
		return model.OTP{}, repository.ErrOTPNotFound
	}
	return o, nil
}

func (f *memStore) ReplaceOTP(ctx context.Context, userID uint64, codeHash string, expiresAt time.Time) error {
	f.otps[userID] = model.OTP{UserID: userID, CodeHash: codeHash, ExpiresAt: expiresAt}
	return nil
}

func (f *memStore) DeleteOTPByUser(ctx context.Context, userID uint64) error {
	delete(f.otps, userID)
	return nil
}

func (f *memStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// memMailer records the last dispatched code.
type memMailer struct{ codes map[string]string }

func (m *memMailer) DispatchOTP(ctx context.Context, email, code string) error {
	m.codes[email] = code
	return nil
}

const (
	accessSecret  = "access-secret"
	refreshSecret = "refresh-secret"
)

func newTestServer(t *testing.T) (*echo.Echo, *memMailer) {
	t.Helper()
	mailer := &memMailer{codes: map[string]string{}}
	issuer := token.NewIssuer(accessSecret, refreshSecret, 15*time.Minute, 7*24*time.Hour)
	svc := service.NewAuthService(newMemStore(), mailer, issuer, service.Options{
		OTPLength:       6,
		OTPTTL:          10 * time.Minute,
		BcryptCost:      4,
		RequireVerified: true,
	})

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), accessSecret, nil)
	return e, mailer
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register", `{"email":"","password":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/register", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullAuthFlow(t *testing.T) {
	e, mailer := newTestServer(t)

	// Register.
	rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.c","password":"pw","full_name":"A B"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registered")

	// Duplicate register.
	rec = doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// Login before verification is refused.
	rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Wrong OTP.
	rec = doJSON(e, http.MethodPost, "/v1/auth/verify", `{"email":"a@b.c","otp":"badbad"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "OTP is not valid")

	// Correct OTP.
	code := mailer.codes["a@b.c"]
	require.NotEmpty(t, code)
	rec = doJSON(e, http.MethodPost, "/v1/auth/verify",
		`{"email":"a@b.c","otp":"`+code+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user is activated")

	// Login.
	rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"a@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp struct {
		Data struct {
			Access  struct{ Token string }
			Refresh struct{ Token string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Data.Access.Token)
	require.NotEmpty(t, loginResp.Data.Refresh.Token)

	// Protected endpoint with the access token.
	rec = doJSON(e, http.MethodGet, "/v1/me", "", loginResp.Data.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@b.c"`)

	// Admin surface is closed to plain users.
	rec = doJSON(e, http.MethodGet, "/v1/admin/users", "", loginResp.Data.Access.Token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Refresh with the refresh token.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+loginResp.Data.Refresh.Token+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshResp struct {
		Data struct {
			Access  struct{ Token string }
			Refresh struct{ Token string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshResp))
	assert.NotEmpty(t, refreshResp.Data.Access.Token)
	assert.Equal(t, loginResp.Data.Refresh.Token, refreshResp.Data.Refresh.Token)

	// Refresh with the access token is forbidden.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+loginResp.Data.Access.Token+`"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminListUsers(t *testing.T) {
	e, mailer := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"root@b.c","password":"pw","role":"admin"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/verify",
		`{"email":"root@b.c","otp":"`+mailer.codes["root@b.c"]+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/auth/login", `{"email":"root@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp struct {
		Data struct {
			Access struct{ Token string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))

	rec = doJSON(e, http.MethodGet, "/v1/admin/users", "", loginResp.Data.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "root@b.c")
	assert.NotContains(t, rec.Body.String(), "password")
}
