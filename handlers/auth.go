package handlers

import (
	"context"
	"net/http"

	"vidly/auth"
	"vidly/middleware"
	"vidly/models"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// AuthHandler handles login, registration and the current-user lookup
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Login handles POST /auth - exchanges email and password for a token
func (h *AuthHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(r, "info", "Login request")

	var req models.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "user")
		return
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	logRequest(r, "info", "Login successful", zap.String("email", req.Email))
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

// Register handles POST /users - creates an account and returns it with
// its token in the x-auth-token header
func (h *AuthHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "user")
		return
	}

	user, token, err := h.auth.Register(ctx, req, false)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	logRequest(r, "info", "User registered", zap.String("user_id", user.ID))
	w.Header().Set(middleware.TokenHeader, token)
	writeJSON(w, http.StatusOK, user)
}

// Me handles GET /users/me - the account behind the caller's token
func (h *AuthHandler) Me(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(ctx)
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Access denied. No token provided."))
		return
	}

	user, err := h.auth.Me(ctx, claims)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
