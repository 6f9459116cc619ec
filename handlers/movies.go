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

const moviesListKey = "movies:list"

// movieKeys are the cache entries touched by any change to one movie,
// including stock changes made by rentals and returns
func movieKeys(id string) []string {
	return []string{moviesListKey, "movie:" + id}
}

// MovieHandler handles movie-related operations
type MovieHandler struct {
	movies *store.MovieStore
	cache  *cache.ResponseCache
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(movies *store.MovieStore, cache *cache.ResponseCache) *MovieHandler {
	return &MovieHandler{movies: movies, cache: cache}
}

// GetMovies handles GET /movies - list all movies ordered by title
func (h *MovieHandler) GetMovies(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(r, "info", "Listing movies")
	serveCached(w, r, h.cache, moviesListKey, listCacheTTL, "movie", func() (interface{}, error) {
		return h.movies.List(ctx)
	})
}

// GetMovie handles GET /movies/{id}
func (h *MovieHandler) GetMovie(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logRequest(r, "info", "Getting movie", zap.String("movie_id", id))
	serveCached(w, r, h.cache, itemKey("movie", id), itemCacheTTL, "movie", func() (interface{}, error) {
		return h.movies.Get(ctx, id)
	})
}

// CreateMovie handles POST /movies. An unknown genreId is a 400.
func (h *MovieHandler) CreateMovie(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.MovieRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "movie")
		return
	}

	movie, err := h.movies.Create(ctx, req)
	if err != nil {
		writeError(w, r, err, "movie")
		return
	}

	h.cache.Delete(moviesListKey)
	logRequest(r, "info", "Movie created successfully", zap.String("movie_id", movie.ID))
	writeJSON(w, http.StatusOK, movie)
}

// UpdateMovie handles PUT /movies/{id}
func (h *MovieHandler) UpdateMovie(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.MovieRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "movie")
		return
	}

	movie, err := h.movies.Update(ctx, id, req)
	if err != nil {
		writeError(w, r, err, "movie")
		return
	}

	h.cache.Delete(movieKeys(movie.ID)...)
	logRequest(r, "info", "Movie updated successfully", zap.String("movie_id", movie.ID))
	writeJSON(w, http.StatusOK, movie)
}

// DeleteMovie handles DELETE /movies/{id}
func (h *MovieHandler) DeleteMovie(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	movie, err := h.movies.Delete(ctx, id)
	if err != nil {
		writeError(w, r, err, "movie")
		return
	}

	h.cache.Delete(movieKeys(movie.ID)...)
	logRequest(r, "info", "Movie deleted successfully", zap.String("movie_id", movie.ID))
	writeJSON(w, http.StatusOK, movie)
}
