package core

import (
	"errors"
	"time"
)

// Roles an account can hold. Signup defaults to RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	// RoleGuest is never stored; it is the quota bucket for
	// unauthenticated callers.
	RoleGuest = "guest"
)

// User is the sanitized projection returned to handlers. It never carries
// the password hash.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrUserNotFound is returned when no account matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPassword is returned when the password does not match.
	// Handlers collapse it with ErrUserNotFound into one generic 401.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrHashing is returned when the password hashing primitive fails.
	ErrHashing = errors.New("error hashing password")
	// ErrRegistrationFailed wraps unexpected failures during signup so
	// internal detail never reaches the transport layer.
	ErrRegistrationFailed = errors.New("error creating user")
	// ErrInvalidToken is returned for expired or tampered tokens.
	ErrInvalidToken = errors.New("invalid token")
)
