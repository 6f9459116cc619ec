package auth

import (
	"context"
	"errors"
	"fmt"

	"vidly/models"
	"vidly/store"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserRepository is the slice of the user store the auth service needs
type UserRepository interface {
	Get(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
}

// Service logs users in and registers new accounts
type Service struct {
	users      UserRepository
	tokens     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth service
func NewService(users UserRepository, tokens *TokenIssuer, bcryptCost int) *Service {
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Tokens returns the issuer used to sign and verify tokens
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Login checks credentials and returns a signed token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// Register creates an account and returns it with a token for it.
// Only the create-admin command passes isAdmin = true.
func (s *Service) Register(ctx context.Context, req models.CreateUserRequest, isAdmin bool) (models.User, string, error) {
	hashed, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Me returns the account behind a set of verified claims
func (s *Service) Me(ctx context.Context, claims *Claims) (models.User, error) {
	return s.users.Get(ctx, claims.UserID)
}
