package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrConflict           = errors.New("auth: already exists")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// User is a console operator account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserStore describes persistence operations required by the auth subsystem.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
