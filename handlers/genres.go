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

const genresListKey = "genres:list"

// GenreHandler handles genre-related operations
type GenreHandler struct {
	genres *store.GenreStore
	cache  *cache.ResponseCache
}

// NewGenreHandler creates a new genre handler
func NewGenreHandler(genres *store.GenreStore, cache *cache.ResponseCache) *GenreHandler {
	return &GenreHandler{genres: genres, cache: cache}
}

// GetGenres handles GET /genres - list all genres ordered by name
func (h *GenreHandler) GetGenres(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(r, "info", "Listing genres")
	serveCached(w, r, h.cache, genresListKey, listCacheTTL, "genre", func() (interface{}, error) {
		return h.genres.List(ctx)
	})
}

// GetGenre handles GET /genres/{id}
func (h *GenreHandler) GetGenre(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logRequest(r, "info", "Getting genre", zap.String("genre_id", id))
	serveCached(w, r, h.cache, itemKey("genre", id), itemCacheTTL, "genre", func() (interface{}, error) {
		return h.genres.Get(ctx, id)
	})
}

// CreateGenre handles POST /genres
func (h *GenreHandler) CreateGenre(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.GenreRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "genre")
		return
	}

	genre, err := h.genres.Create(ctx, req)
	if err != nil {
		writeError(w, r, err, "genre")
		return
	}

	h.cache.Delete(genresListKey)
	logRequest(r, "info", "Genre created successfully", zap.String("genre_id", genre.ID))
	writeJSON(w, http.StatusOK, genre)
}

// UpdateGenre handles PUT /genres/{id}
func (h *GenreHandler) UpdateGenre(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.GenreRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "genre")
		return
	}

	genre, err := h.genres.Update(ctx, id, req)
	if err != nil {
		writeError(w, r, err, "genre")
		return
	}

	h.cache.Delete(genresListKey, "genre:"+genre.ID)
	logRequest(r, "info", "Genre updated successfully", zap.String("genre_id", genre.ID))
	writeJSON(w, http.StatusOK, genre)
}

// DeleteGenre handles DELETE /genres/{id} and returns the removed genre
func (h *GenreHandler) DeleteGenre(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	genre, err := h.genres.Delete(ctx, id)
	if err != nil {
		writeError(w, r, err, "genre")
		return
	}

	h.cache.Delete(genresListKey, "genre:"+genre.ID)
	logRequest(r, "info", "Genre deleted successfully", zap.String("genre_id", genre.ID))
	writeJSON(w, http.StatusOK, genre)
}
