// Package repository persists users and verification codes in MySQL.  This
// file defines sentinel errors shared by the repositories so that higher
// layers can distinguish failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a user lookup matches no row.  The service
// layer translates this into an HTTP 404 response.
var ErrNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert violates the unique email key.
// The service layer translates this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrOTPNotFound is returned when no pending verification code exists for a
// user, either because none was issued or because it was already consumed.
var ErrOTPNotFound = errors.New("otp not found")
