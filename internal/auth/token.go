package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// resetTokenTTL is the fixed validity window for password-reset tokens.
const resetTokenTTL = 20 * time.Hour

// TokenClaims represents the claims carried by every token the service
// mints. Subject holds the user's email; access tokens carry no expiry,
// reset tokens expire after resetTokenTTL.
type TokenClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager mints and validates the compact signed tokens used as
// bearer credentials. Secret and algorithm are fixed at construction from
// process configuration and shared by issuance and verification.
type TokenManager struct {
	secretKey []byte
	method    jwt.SigningMethod
}

// NewTokenManager creates a TokenManager for the given symmetric secret
// and HMAC algorithm name (HS256, HS384 or HS512).
func NewTokenManager(secretKey, algorithm string) (*TokenManager, error) {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenManager{
		secretKey: []byte(secretKey),
		method:    method,
	}, nil
}

// GenerateAccessToken creates the bearer token returned by login,
// registration and social login.
func (tm *TokenManager) GenerateAccessToken(email string, userID int64) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  email,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(tm.method, claims)
	return token.SignedString(tm.secretKey)
}

// GenerateResetToken creates the short-lived token embedded in the
// password-recovery email link.
func (tm *TokenManager) GenerateResetToken(email string, userID int64) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(tm.method, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateResetToken accepts only tokens minted by GenerateResetToken.
// Access tokens carry neither an expiry nor a token id, so they cannot
// stand in as reset credentials.
func (tm *TokenManager) ValidateResetToken(tokenString string) (*TokenClaims, error) {
	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}

// ValidateToken verifies the signature and, when present, the expiry
// claim, and returns the embedded subject. Any malformed, mis-signed or
// expired token fails; callers surface all of them identically.
func (tm *TokenManager) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		if token.Method.Alg() != tm.method.Alg() {
			return nil, ErrInvalidCredential
		}
		return tm.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
