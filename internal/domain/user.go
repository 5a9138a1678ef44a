package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

type User struct {
	ID    string
	Name  string
	Email string

	// PasswordHash is a bcrypt hash. It never leaves the auth layer:
	// transport response types have no field for it.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
