package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"vidly/auth"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// TokenHeader carries the signed token on protected routes
const TokenHeader = "x-auth-token"

type ctxKey string

const claimsCtxKey ctxKey = "claims"

// ClaimsFromContext returns the claims attached by RequireAuth, or nil
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsCtxKey).(*auth.Claims)
	return claims
}

// WithClaims attaches claims to ctx
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// RequireAuth rejects requests without a valid token with 401 and stores
// the decoded claims in the request context for downstream handlers.
func RequireAuth(tokens *auth.TokenIssuer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				logger.Debug("No token provided", zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Access denied. No token provided."))
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				logger.Debug("Invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid token."))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after RequireAuth. Callers whose claims are not
// admin get 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Access denied. No token provided."))
			return
		}
		if !claims.IsAdmin {
			logger.Info("Admin access denied", zap.String("user_id", claims.UserID), zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusForbidden, errs.NewAuthenticationError("Access denied."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
