package store

import (
	"context"
	"fmt"

	"vidly/models"

	"github.com/jmoiron/sqlx"
)

// GenreStore persists genres
type GenreStore struct {
	db *sqlx.DB
}

// NewGenreStore creates a new genre store
func NewGenreStore(db *sqlx.DB) *GenreStore {
	return &GenreStore{db: db}
}

// List returns all genres ordered by name
func (s *GenreStore) List(ctx context.Context) ([]models.Genre, error) {
	genres := []models.Genre{}
	if err := s.db.SelectContext(ctx, &genres, "SELECT id, name FROM genres ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// Get returns the genre with the given id
func (s *GenreStore) Get(ctx context.Context, id string) (models.Genre, error) {
	var genre models.Genre
	id, ok := normalizeID(id)
	if !ok {
		return genre, ErrNotFound
	}

	err := s.db.GetContext(ctx, &genre, s.db.Rebind("SELECT id, name FROM genres WHERE id = ?"), id)
	if err != nil {
		return genre, notFound(err)
	}
	return genre, nil
}

// Create inserts a new genre
func (s *GenreStore) Create(ctx context.Context, req models.GenreRequest) (models.Genre, error) {
	genre := models.Genre{ID: newID(), Name: req.Name}

	_, err := s.db.ExecContext(ctx, s.db.Rebind("INSERT INTO genres (id, name) VALUES (?, ?)"), genre.ID, genre.Name)
	if err != nil {
		return models.Genre{}, fmt.Errorf("insert genre: %w", err)
	}
	return genre, nil
}

// Update renames a genre. Movies keep the name they snapshotted.
func (s *GenreStore) Update(ctx context.Context, id string, req models.GenreRequest) (models.Genre, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Genre{}, ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE genres SET name = ? WHERE id = ?"), req.Name, id)
	if err != nil {
		return models.Genre{}, fmt.Errorf("update genre: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.Genre{}, ErrNotFound
	}
	return models.Genre{ID: id, Name: req.Name}, nil
}

// Delete removes a genre and returns what was removed
func (s *GenreStore) Delete(ctx context.Context, id string) (models.Genre, error) {
	var genre models.Genre
	id, ok := normalizeID(id)
	if !ok {
		return genre, ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return genre, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &genre, tx.Rebind("SELECT id, name FROM genres WHERE id = ?"), id); err != nil {
		return genre, notFound(err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM genres WHERE id = ?"), id); err != nil {
		return genre, fmt.Errorf("delete genre: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return genre, fmt.Errorf("commit: %w", err)
	}
	return genre, nil
}
