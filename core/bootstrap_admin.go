package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
)

const bootstrapAdminEmail = "admin@localhost"

// BootstrapAdmin creates an initial admin account when none exists.
// It is idempotent: if an admin already exists, it does nothing.
func BootstrapAdmin(ctx context.Context, service *AuthService, repo UserRepository, cfg Config) error {
	if !cfg.BootstrapAdminEnabled {
		return nil
	}

	has, err := repo.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	password, err := generatePassword(32)
	if err != nil {
		return err
	}

	if _, err := service.Register(ctx, "Administrator", bootstrapAdminEmail, password, RoleAdmin); err != nil {
		// Another instance may have won the race; that is fine.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	if cfg.InitialAdminPasswordPath != "" {
		if err := os.WriteFile(cfg.InitialAdminPasswordPath, []byte(password+"\n"), 0o600); err != nil {
			return err
		}
		slog.Info("initial admin created; credentials written to file",
			"email", bootstrapAdminEmail, "path", cfg.InitialAdminPasswordPath)
	} else {
		slog.Info("initial admin created", "email", bootstrapAdminEmail, "password", password)
	}

	return nil
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
