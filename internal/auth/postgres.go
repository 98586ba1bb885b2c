package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGUserStore persists operator accounts in PostgreSQL.
type PGUserStore struct {
	db *sql.DB
}

// NewPGUserStore wraps an open database handle.
func NewPGUserStore(db *sql.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

func (s *PGUserStore) Create(ctx context.Context, user *User) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.Name, user.Email, user.PasswordHash, user.Role)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PGUserStore) Find(ctx context.Context, id int64) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

func (s *PGUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = $1
	`, email))
}

func (s *PGUserStore) scanOne(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// isUniqueViolation matches the Postgres unique_violation SQLSTATE without
// binding to a driver-specific error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
