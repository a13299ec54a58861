package auth

import "errors"

var (
	// ErrInvalidCredential covers bad passwords and bad tokens alike; the
	// transport layer never tells the caller which one it was.
	ErrInvalidCredential = errors.New("could not validate user")
	ErrExpiredToken      = errors.New("token has expired")

	ErrUnknownProvider  = errors.New("unknown identity provider")
	ErrExternalProvider = errors.New("identity provider rejected the token")
	ErrWrongPassword    = errors.New("old password does not match")
)
