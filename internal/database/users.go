package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// User is an account record. A user owns zero or more characters.
type User struct {
	ID           string       `db:"id"`
	Username     string       `db:"username"`
	PasswordHash string       `db:"password_hash"`
	Email        string       `db:"email"`
	CreatedAt    time.Time    `db:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at"`
}

type UserStore struct {
	db *sqlx.DB
}

// Create inserts a new user. Usernames are unique case-insensitively.
func (s *UserStore) Create(ctx context.Context, username, passwordHash, email string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, created_at)
		 VALUES (:id, :username, :password_hash, :email, :created_at)`, u)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// GetByUsername finds a user by name, case-insensitively.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &u, nil
}

// TouchLogin records a successful login.
func (s *UserStore) TouchLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
