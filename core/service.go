package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AuthService orchestrates repository and hasher to authenticate or create
// users. It owns the domain error vocabulary: ErrUserNotFound,
// ErrInvalidPassword and ErrDuplicateEmail propagate verbatim for HTTP status
// mapping; every other failure is logged with detail and wrapped generically.
type AuthService struct {
	users  UserRepository
	hasher Hasher
	logger *slog.Logger
}

func NewAuthService(users UserRepository, hasher Hasher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, hasher: hasher, logger: logger}
}

// Authenticate verifies email+password and returns the sanitized user view.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		s.logger.Error("authenticate user failed", "email", email, "error", err)
		return User{}, fmt.Errorf("error authenticating user: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return User{}, ErrInvalidPassword
	}

	s.logger.Info("user authenticated", "email", email)
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}, nil
}

// Register creates a user with a hashed password. The existence pre-check is
// best effort; the database unique constraint on email is the final arbiter,
// and its violation also surfaces as ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if role == "" {
		role = RoleUser
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return User{}, ErrDuplicateEmail
	case !errors.Is(err, ErrUserNotFound):
		s.logger.Error("create user lookup failed", "email", email, "error", err)
		return User{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("create user hash failed", "email", email, "error", err)
		return User{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	u, err := s.users.Insert(ctx, name, email, hash, role)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, ErrDuplicateEmail
		}
		s.logger.Error("create user insert failed", "email", email, "error", err)
		return User{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	s.logger.Info("new user created", "email", email, "role", role)
	return u, nil
}

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// constraint agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
