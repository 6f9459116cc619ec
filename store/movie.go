package store

import (
	"context"
	"errors"
	"fmt"

	"vidly/models"

	"github.com/jmoiron/sqlx"
)

const movieColumns = "id, title, genre_id, genre_name, number_in_stock, daily_rental_rate"

// movieRow is the flat table shape of a movie; the genre snapshot is
// stored in genre_id and genre_name.
type movieRow struct {
	ID              string  `db:"id"`
	Title           string  `db:"title"`
	GenreID         string  `db:"genre_id"`
	GenreName       string  `db:"genre_name"`
	NumberInStock   int     `db:"number_in_stock"`
	DailyRentalRate float64 `db:"daily_rental_rate"`
}

func (r movieRow) toMovie() models.Movie {
	return models.Movie{
		ID:              r.ID,
		Title:           r.Title,
		Genre:           models.GenreSnapshot{ID: r.GenreID, Name: r.GenreName},
		NumberInStock:   r.NumberInStock,
		DailyRentalRate: r.DailyRentalRate,
	}
}

func newMovieRow(m models.Movie) movieRow {
	return movieRow{
		ID:              m.ID,
		Title:           m.Title,
		GenreID:         m.Genre.ID,
		GenreName:       m.Genre.Name,
		NumberInStock:   m.NumberInStock,
		DailyRentalRate: m.DailyRentalRate,
	}
}

// MovieStore persists movies. Writes resolve the referenced genre through
// genres and store a snapshot of it.
type MovieStore struct {
	db     *sqlx.DB
	genres *GenreStore
}

// NewMovieStore creates a new movie store
func NewMovieStore(db *sqlx.DB, genres *GenreStore) *MovieStore {
	return &MovieStore{db: db, genres: genres}
}

// List returns all movies ordered by title
func (s *MovieStore) List(ctx context.Context) ([]models.Movie, error) {
	var rows []movieRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+movieColumns+" FROM movies ORDER BY title"); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(rows))
	for _, r := range rows {
		movies = append(movies, r.toMovie())
	}
	return movies, nil
}

// Get returns the movie with the given id
func (s *MovieStore) Get(ctx context.Context, id string) (models.Movie, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Movie{}, ErrNotFound
	}

	var row movieRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT "+movieColumns+" FROM movies WHERE id = ?"), id); err != nil {
		return models.Movie{}, notFound(err)
	}
	return row.toMovie(), nil
}

// Create inserts a movie with a snapshot of its genre. An unknown genre is
// a validation failure, not a missing resource.
func (s *MovieStore) Create(ctx context.Context, req models.MovieRequest) (models.Movie, error) {
	genre, err := s.resolveGenre(ctx, req.GenreID)
	if err != nil {
		return models.Movie{}, err
	}

	movie := buildMovie(newID(), req, genre)
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO movies (id, title, genre_id, genre_name, number_in_stock, daily_rental_rate)
		 VALUES (:id, :title, :genre_id, :genre_name, :number_in_stock, :daily_rental_rate)`,
		newMovieRow(movie))
	if err != nil {
		return models.Movie{}, fmt.Errorf("insert movie: %w", err)
	}
	return movie, nil
}

// Update replaces a movie's fields and takes a fresh genre snapshot
func (s *MovieStore) Update(ctx context.Context, id string, req models.MovieRequest) (models.Movie, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Movie{}, ErrNotFound
	}

	genre, err := s.resolveGenre(ctx, req.GenreID)
	if err != nil {
		return models.Movie{}, err
	}

	movie := buildMovie(id, req, genre)
	result, err := s.db.NamedExecContext(ctx,
		`UPDATE movies SET title = :title, genre_id = :genre_id, genre_name = :genre_name,
		 number_in_stock = :number_in_stock, daily_rental_rate = :daily_rental_rate
		 WHERE id = :id`,
		newMovieRow(movie))
	if err != nil {
		return models.Movie{}, fmt.Errorf("update movie: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.Movie{}, ErrNotFound
	}
	return movie, nil
}

// Delete removes a movie and returns what was removed
func (s *MovieStore) Delete(ctx context.Context, id string) (models.Movie, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Movie{}, ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Movie{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row movieRow
	if err := tx.GetContext(ctx, &row, tx.Rebind("SELECT "+movieColumns+" FROM movies WHERE id = ?"), id); err != nil {
		return models.Movie{}, notFound(err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM movies WHERE id = ?"), id); err != nil {
		return models.Movie{}, fmt.Errorf("delete movie: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Movie{}, fmt.Errorf("commit: %w", err)
	}
	return row.toMovie(), nil
}

func (s *MovieStore) resolveGenre(ctx context.Context, genreID string) (models.Genre, error) {
	genre, err := s.genres.Get(ctx, genreID)
	if errors.Is(err, ErrNotFound) {
		return models.Genre{}, ErrInvalidGenre
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("lookup genre: %w", err)
	}
	return genre, nil
}

func buildMovie(id string, req models.MovieRequest, genre models.Genre) models.Movie {
	movie := models.Movie{
		ID:    id,
		Title: req.Title,
		Genre: genre.Snapshot(),
	}
	if req.NumberInStock != nil {
		movie.NumberInStock = *req.NumberInStock
	}
	if req.DailyRentalRate != nil {
		movie.DailyRentalRate = *req.DailyRentalRate
	}
	return movie
}
