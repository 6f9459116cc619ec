package handlers

import (
	"context"
	"net/http"

	"vidly/cache"
	"vidly/models"
	"vidly/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RentalHandler handles rentals and returns. Rentals are not cached, but
// every rental changes a movie's stock, so the movie entries are dropped.
type RentalHandler struct {
	rentals *store.RentalStore
	cache   *cache.ResponseCache
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(rentals *store.RentalStore, cache *cache.ResponseCache) *RentalHandler {
	return &RentalHandler{rentals: rentals, cache: cache}
}

// GetRentals handles GET /rentals
func (h *RentalHandler) GetRentals(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(r, "info", "Listing rentals")

	rentals, err := h.rentals.List(ctx)
	if err != nil {
		writeError(w, r, err, "rental")
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

// GetRental handles GET /rentals/{id}
func (h *RentalHandler) GetRental(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logRequest(r, "info", "Getting rental", zap.String("rental_id", id))

	rental, err := h.rentals.Get(ctx, id)
	if err != nil {
		writeError(w, r, err, "rental")
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// CreateRental handles POST /rentals
func (h *RentalHandler) CreateRental(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.RentalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "rental")
		return
	}

	rental, err := h.rentals.Create(ctx, req)
	if err != nil {
		writeError(w, r, err, "rental")
		return
	}

	h.cache.Delete(movieKeys(rental.Movie.ID)...)
	logRequest(r, "info", "Rental created successfully",
		zap.String("rental_id", rental.ID), zap.String("movie_id", rental.Movie.ID))
	writeJSON(w, http.StatusOK, rental)
}

// ReturnRental handles POST /returns
func (h *RentalHandler) ReturnRental(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.RentalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "rental")
		return
	}

	rental, err := h.rentals.Return(ctx, req)
	if err != nil {
		writeError(w, r, err, "rental")
		return
	}

	h.cache.Delete(movieKeys(rental.Movie.ID)...)
	logRequest(r, "info", "Rental returned",
		zap.String("rental_id", rental.ID), zap.Float64("fee", *rental.RentalFee))
	writeJSON(w, http.StatusOK, rental)
}
