package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/otabek-dev/auth-otp-service/internal/model"
)

// AccountRepo persists users and their pending verification codes.  Register
// writes both records inside one transaction so a crash can never leave an
// inactive user without a code to verify.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// FindUserByEmail fetches a user by normalized email.
func (r *AccountRepo) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// CreateUserWithOTP inserts an inactive user together with its verification
// code row in a single transaction and returns the new user ID.
func (r *AccountRepo) CreateUserWithOTP(ctx context.Context, u model.User, codeHash string, expiresAt time.Time) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role, is_active) VALUES (?,?,?,?,0)",
		strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.FullName, u.Role)
	if err != nil {
		// 1062 = ER_DUP_ENTRY on the unique email key
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO otps (user_id, code_hash, expires_at) VALUES (?,?,?)",
		uint64(id), codeHash, expiresAt); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ActivateUser marks the account verified.
func (r *AccountRepo) ActivateUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=1 WHERE email=?", email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOTPByUser returns the pending verification code row for a user.
func (r *AccountRepo) FindOTPByUser(ctx context.Context, userID uint64) (model.OTP, error) {
	var o model.OTP
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,code_hash,expires_at,created_at FROM otps WHERE user_id=? LIMIT 1",
		userID).Scan(&o.ID, &o.UserID, &o.CodeHash, &o.ExpiresAt, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OTP{}, ErrOTPNotFound
	}
	return o, err
}

// ReplaceOTP swaps a user's verification code for a fresh one.  Used when an
// expired code is presented and a new one must be issued.
func (r *AccountRepo) ReplaceOTP(ctx context.Context, userID uint64, codeHash string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM otps WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO otps (user_id, code_hash, expires_at) VALUES (?,?,?)",
		userID, codeHash, expiresAt); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteOTPByUser consumes a verification code.
func (r *AccountRepo) DeleteOTPByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE user_id=?", userID)
	return err
}

// ListUsers returns all accounts ordered by creation time.  Only used by the
// admin surface.
func (r *AccountRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,full_name,role,is_active,created_at,updated_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
