package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rmarbach/todoboard-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// SeedUser describes an account provisioned at startup.
type SeedUser struct {
	Username string
	FullName string
	Role     models.Role
	Password string
}

const userColumns = "id, username, full_name, role, password_hash, created_at"

// UserService provides business logic for user accounts.
type UserService struct {
	db *sqlx.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sqlx.DB) *UserService {
	return &UserService{db: db}
}

// GetByUsername retrieves a single user by login name. The lookup is
// case-insensitive (the username column collates NOCASE).
func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, storeErr("get user", err)
	}
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown login and wrong
// password produce the same outcome so callers cannot tell them apart.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers retrieves every user account, ordered by login name.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY username ASC")
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// EnsureSeedUsers provisions the given accounts, creating missing ones and
// refreshing role, display name and password on existing ones. Safe to run
// on every startup.
func (s *UserService) EnsureSeedUsers(ctx context.Context, seeds []SeedUser) error {
	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		existing, err := s.GetByUsername(ctx, seed.Username)
		switch {
		case errors.Is(err, ErrNotFound):
			_, err = s.db.ExecContext(ctx,
				"INSERT INTO users (id, username, full_name, role, password_hash) VALUES (?, ?, ?, ?, ?)",
				uuid.New().String(), seed.Username, seed.FullName, seed.Role, string(hash))
			if err != nil {
				return storeErr("seed user", err)
			}
		case err != nil:
			return err
		default:
			_, err = s.db.ExecContext(ctx,
				"UPDATE users SET full_name = ?, role = ?, password_hash = ? WHERE id = ?",
				seed.FullName, seed.Role, string(hash), existing.ID)
			if err != nil {
				return storeErr("seed user", err)
			}
		}
	}
	return nil
}
