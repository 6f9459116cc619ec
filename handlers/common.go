package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"vidly/auth"
	"vidly/cache"
	"vidly/middleware"
	"vidly/store"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const (
	listCacheTTL = 5 * time.Minute
	itemCacheTTL = 10 * time.Minute
)

// logRequest logs with the route, method, path and caller attached,
// followed by any extra fields (e.g. zap.Error(err))
func logRequest(r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := ""
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}, fields...)
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		allFields = append(allFields, zap.String("user_id", claims.UserID))
	}

	switch level {
	case "info":
		logger.Info(message, allFields...)
	case "error":
		logger.Error(message, allFields...)
	case "debug":
		logger.Debug(message, allFields...)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError is the one place where operation errors become HTTP statuses
func writeError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		logRequest(r, "info", "Validation failed", zap.String("reason", verr.Message))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(verr.Message))
	case errors.Is(err, auth.ErrInvalidCredentials):
		logRequest(r, "info", "Invalid credentials")
		writeJSON(w, http.StatusBadRequest, errs.NewAuthenticationError("Invalid email or password."))
	case errors.Is(err, store.ErrNotFound):
		logRequest(r, "info", entity+" not found", zap.String("id", mux.Vars(r)["id"]))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError(fmt.Sprintf("The %s with the given ID was not found.", entity)))
	default:
		logRequest(r, "error", "Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Something failed."))
	}
}

// serveCached writes the cached body for key, or loads, encodes, caches
// and writes it. An empty key skips the cache.
func serveCached(w http.ResponseWriter, r *http.Request, c *cache.ResponseCache, key string, ttl time.Duration,
	entity string, load func() (interface{}, error)) {
	if key != "" {
		if body, ok := c.Get(key); ok {
			logRequest(r, "debug", "Serving from cache", zap.String("key", key))
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	gen := c.Generation()
	value, err := load()
	if err != nil {
		writeError(w, r, err, entity)
		return
	}

	body, err := json.Marshal(value)
	if err != nil {
		writeError(w, r, fmt.Errorf("encode response: %w", err), entity)
		return
	}
	if key != "" && !c.SetIfGeneration(key, body, ttl, gen) {
		logRequest(r, "debug", "Skipped caching a value invalidated while loading", zap.String("key", key))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// itemKey is the cache key for one record, or "" when id is not canonical
func itemKey(prefix, id string) string {
	canonical, ok := store.CanonicalID(id)
	if !ok || canonical != id {
		return ""
	}
	return prefix + ":" + id
}
