package model

import "time"

// Roles recognized by the service.  Registration defaults to RoleUser; admin
// accounts are expected to be promoted out of band.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account record as stored in the `users` table.  A user
// is created inactive during registration and flipped to active once the
// emailed verification code is confirmed.  The password is kept only as a
// bcrypt hash; the plaintext is never stored or retrievable.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address (the identity key).
//	PasswordHash – bcrypt hash of the password.
//	FullName     – optional display name supplied at registration.
//	Role         – "user" or "admin".
//	IsActive     – whether email verification has completed.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// OTP models an entry in the `otps` table.  Each pending registration has at
// most one row here; the row is deleted when verification succeeds.  The
// plain code is not stored, only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the code; unique, so one live code per user.
//	CodeHash  – SHA-256 hex digest of the code value.
//	ExpiresAt – when the code stops being accepted.
//	CreatedAt – timestamp of issuance.
type OTP struct {
	ID        uint64    // otps.id
	UserID    uint64    // otps.user_id
	CodeHash  string    // otps.code_hash
	ExpiresAt time.Time // otps.expires_at
	CreatedAt time.Time // otps.created_at
}
