package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// memUserRepository is an in-memory UserRepository for tests. It enforces the
// email unique constraint the way the database does.
type memUserRepository struct {
	nextID  int64
	byEmail map[string]*UserRecord
	failing bool
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{nextID: 1, byEmail: map[string]*UserRecord{}}
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	if r.failing {
		return nil, errStorageDown
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepository) Insert(_ context.Context, name, email, passwordHash, role string) (User, error) {
	if r.failing {
		return User{}, errStorageDown
	}
	if _, ok := r.byEmail[email]; ok {
		return User{}, ErrDuplicateEmail
	}
	rec := &UserRecord{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	r.nextID++
	r.byEmail[email] = rec
	return User{ID: rec.ID, Name: rec.Name, Email: rec.Email, Role: rec.Role, CreatedAt: rec.CreatedAt}, nil
}

func (r *memUserRepository) HasAdmin(_ context.Context) (bool, error) {
	for _, u := range r.byEmail {
		if u.Role == RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

var errStorageDown = &storageError{"storage down"}

type storageError struct{ msg string }

func (e *storageError) Error() string { return e.msg }

func TestAuthServiceRegisterAndAuthenticate(t *testing.T) {
	repo := newMemUserRepository()
	svc := NewAuthService(repo, NewBcryptHasher(), nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice Smith", "Alice@Example.com", "password123", "")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email, "email must be normalized")
	require.Equal(t, RoleUser, user.Role, "role defaults to user")
	require.NotZero(t, user.ID)

	// Stored hash must not be the plaintext.
	rec, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "password123", rec.PasswordHash)

	got, err := svc.Authenticate(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, RoleUser, got.Role)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMemUserRepository()
	svc := NewAuthService(repo, NewBcryptHasher(), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Alice Clone", "alice@example.com", "password456", "")
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.Len(t, repo.byEmail, 1, "no new row on duplicate")
}

func TestAuthServiceRegisterMapsInsertRace(t *testing.T) {
	repo := newMemUserRepository()
	svc := NewAuthService(repo, NewBcryptHasher(), nil)
	ctx := context.Background()

	// Simulate a concurrent signup winning between pre-check and insert:
	// the repository reports the unique violation, not the pre-check.
	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "password123", "")
	require.NoError(t, err)
	repo.byEmail["bob@example.com"] = repo.byEmail["alice@example.com"]
	_, err = svc.Register(ctx, "Bob Jones", "bob@example.com", "password123", "")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthServiceAuthenticateFailures(t *testing.T) {
	repo := newMemUserRepository()
	svc := NewAuthService(repo, NewBcryptHasher(), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAuthServiceWrapsUnexpectedErrors(t *testing.T) {
	repo := newMemUserRepository()
	repo.failing = true
	svc := NewAuthService(repo, NewBcryptHasher(), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice Smith", "alice@example.com", "password123", "")
	require.ErrorIs(t, err, ErrRegistrationFailed)
	// The cause stays reachable for diagnosis even though the message is generic.
	require.NotErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Authenticate(ctx, "alice@example.com", "password123")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUserNotFound)
	require.NotErrorIs(t, err, ErrInvalidPassword)
}
