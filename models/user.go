package models

// User represents an account that can obtain auth tokens
// Password is stored hashed (bcrypt); never return it in JSON responses
type User struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"`
	IsAdmin  bool   `json:"isAdmin" db:"is_admin"`
}

// CreateUserRequest represents the registration body for POST /users
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=5,max=50"`
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"` // Plaintext; hashed before storage
}

// LoginRequest is the body of POST /auth
type LoginRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	Token string `json:"token"`
}
