package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 24*time.Hour)

	token, err := issuer.Sign(42, "alice@example.com", RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.ID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, RoleUser, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenIssuerExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Sign(42, "alice@example.com", RoleUser)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerTampered(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Sign(42, "alice@example.com", RoleUser)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Sign(42, "alice@example.com", RoleUser)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
