package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("test-secret", "HS256")
	require.NoError(t, err)
	return tm
}

func TestNewTokenManagerUnsupportedAlgorithm(t *testing.T) {
	_, err := NewTokenManager("secret", "RS256")
	assert.Error(t, err)

	_, err = NewTokenManager("secret", "none")
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestManager(t)

	token, err := tm.GenerateAccessToken("alice@example.com", 42)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	// Access tokens carry no expiry.
	assert.Nil(t, claims.ExpiresAt)
}

func TestResetTokenRoundTrip(t *testing.T) {
	tm := newTestManager(t)

	token, err := tm.GenerateResetToken("alice@example.com", 42)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	require.NotNil(t, claims.ExpiresAt)
	assert.NotEmpty(t, claims.ID)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, resetTokenTTL.Seconds(), remaining.Seconds(), 60)
}

func TestValidateResetTokenRejectsAccessToken(t *testing.T) {
	tm := newTestManager(t)

	access, err := tm.GenerateAccessToken("alice@example.com", 42)
	require.NoError(t, err)
	_, err = tm.ValidateResetToken(access)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	reset, err := tm.GenerateResetToken("alice@example.com", 42)
	require.NoError(t, err)
	claims, err := tm.ValidateResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestValidateTokenExpired(t *testing.T) {
	tm := newTestManager(t)

	claims := TokenClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-21 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	tm := newTestManager(t)

	other, err := NewTokenManager("other-secret", "HS256")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("alice@example.com", 42)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestValidateTokenAlgorithmMismatch(t *testing.T) {
	tm := newTestManager(t)

	// Same secret, different HMAC variant: rejected by the keyfunc.
	other, err := NewTokenManager("test-secret", "HS512")
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("alice@example.com", 42)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestValidateTokenTampered(t *testing.T) {
	tm := newTestManager(t)

	token, err := tm.GenerateAccessToken("alice@example.com", 42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestValidateTokenGarbage(t *testing.T) {
	tm := newTestManager(t)

	for _, s := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.ValidateToken(s)
		assert.ErrorIs(t, err, ErrInvalidCredential, "token=%q", s)
	}
}

func TestValidateTokenMissingIdentity(t *testing.T) {
	tm := newTestManager(t)

	// A signed token without subject or user id is not a credential.
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
