package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("your account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
