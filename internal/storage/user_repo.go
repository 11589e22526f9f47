package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_user_store.go -package=mocks dersdefteri/internal/storage UserStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create inserts a user. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *User) error
	// GetByEmail gets a user by email (case-insensitive).
	// Returns nil and ErrNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID gets a user by ID.
	// Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*User, error)
}

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. Emails are stored lowercased.
func (r *UserRepo) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail gets a user by email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID gets a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
