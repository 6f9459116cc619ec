package handlers

import (
	"context"
	"net/http"
)

// Health handles GET /health
func Health(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "vidly"})
}
