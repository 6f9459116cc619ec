package store

import (
	"context"
	"errors"
	"fmt"

	"vidly/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = "id, name, email, password, is_admin"

// UserStore persists user accounts. Passwords arrive already hashed.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns the user with the given id
func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	var user models.User
	id, ok := normalizeID(id)
	if !ok {
		return user, ErrNotFound
	}

	if err := s.db.GetContext(ctx, &user, s.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id); err != nil {
		return user, notFound(err)
	}
	return user, nil
}

// FindByEmail returns the user registered with email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := s.db.GetContext(ctx, &user, s.db.Rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email); err != nil {
		return user, notFound(err)
	}
	return user, nil
}

// Create registers a user. Emails are unique; a taken email is reported as
// ErrUserExists.
func (s *UserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	_, err := s.FindByEmail(ctx, user.Email)
	if err == nil {
		return models.User{}, ErrUserExists
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	user.ID = newID()
	_, err = s.db.NamedExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (:id, :name, :email, :password, :is_admin)",
		user)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
