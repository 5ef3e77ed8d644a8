package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrInvalidUsername = errors.New("username must be 1-150 letters, digits or @/./+/-/_")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrInvalidEmail    = errors.New("invalid email format")
)
