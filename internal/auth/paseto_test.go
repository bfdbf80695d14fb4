package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("short"))
	assert.Error(t, err)
}

func TestPaseto_RoundTrip(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	tok, err := svc.CreateToken("uid-42", "a@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "uid-42", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestPaseto_EmptyEmailAllowed(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	tok, err := svc.CreateToken("phone-user", "", time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "phone-user", claims.UserID)
	assert.Empty(t, claims.Email)
}

func TestPaseto_Expired(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	tok, err := svc.CreateToken("uid", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPaseto_WrongKey(t *testing.T) {
	issuer, err := NewPasetoService(testKey)
	require.NoError(t, err)
	other, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	tok, err := issuer.CreateToken("uid", "", time.Minute)
	require.NoError(t, err)

	_, err = other.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPaseto_CreateRequiresUserID(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)

	_, err = svc.CreateToken("", "", time.Minute)
	assert.Error(t, err)
}
