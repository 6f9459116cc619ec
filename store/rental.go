package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidly/models"

	"github.com/jmoiron/sqlx"
)

const rentalColumns = `id, customer_id, customer_name, customer_phone, customer_is_gold_member,
	movie_id, movie_title, movie_daily_rental_rate, date_out, date_returned, rental_fee`

type rentalRow struct {
	ID                   string          `db:"id"`
	CustomerID           string          `db:"customer_id"`
	CustomerName         string          `db:"customer_name"`
	CustomerPhone        string          `db:"customer_phone"`
	CustomerIsGoldMember bool            `db:"customer_is_gold_member"`
	MovieID              string          `db:"movie_id"`
	MovieTitle           string          `db:"movie_title"`
	MovieDailyRentalRate float64         `db:"movie_daily_rental_rate"`
	DateOut              time.Time       `db:"date_out"`
	DateReturned         sql.NullTime    `db:"date_returned"`
	RentalFee            sql.NullFloat64 `db:"rental_fee"`
}

func (r rentalRow) toRental() models.Rental {
	rental := models.Rental{
		ID: r.ID,
		Customer: models.CustomerSnapshot{
			ID:           r.CustomerID,
			Name:         r.CustomerName,
			Phone:        r.CustomerPhone,
			IsGoldMember: r.CustomerIsGoldMember,
		},
		Movie: models.MovieSnapshot{
			ID:              r.MovieID,
			Title:           r.MovieTitle,
			DailyRentalRate: r.MovieDailyRentalRate,
		},
		DateOut: r.DateOut.UTC(),
	}
	if r.DateReturned.Valid {
		returned := r.DateReturned.Time.UTC()
		rental.DateReturned = &returned
	}
	if r.RentalFee.Valid {
		fee := r.RentalFee.Float64
		rental.RentalFee = &fee
	}
	return rental
}

func newRentalRow(r models.Rental) rentalRow {
	row := rentalRow{
		ID:                   r.ID,
		CustomerID:           r.Customer.ID,
		CustomerName:         r.Customer.Name,
		CustomerPhone:        r.Customer.Phone,
		CustomerIsGoldMember: r.Customer.IsGoldMember,
		MovieID:              r.Movie.ID,
		MovieTitle:           r.Movie.Title,
		MovieDailyRentalRate: r.Movie.DailyRentalRate,
		DateOut:              r.DateOut,
	}
	if r.DateReturned != nil {
		row.DateReturned = sql.NullTime{Time: *r.DateReturned, Valid: true}
	}
	if r.RentalFee != nil {
		row.RentalFee = sql.NullFloat64{Float64: *r.RentalFee, Valid: true}
	}
	return row
}

// RentalStore persists rentals and keeps movie stock in step with them.
// A rental row and its stock change are always written in one transaction.
type RentalStore struct {
	db        *sqlx.DB
	customers *CustomerStore
	movies    *MovieStore
	now       func() time.Time
}

// NewRentalStore creates a new rental store
func NewRentalStore(db *sqlx.DB, customers *CustomerStore, movies *MovieStore) *RentalStore {
	return &RentalStore{
		db:        db,
		customers: customers,
		movies:    movies,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for dateOut and dateReturned
func (s *RentalStore) WithClock(now func() time.Time) *RentalStore {
	s.now = now
	return s
}

// List returns all rentals, most recent first
func (s *RentalStore) List(ctx context.Context) ([]models.Rental, error) {
	var rows []rentalRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+rentalColumns+" FROM rentals ORDER BY date_out DESC, id"); err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}

	rentals := make([]models.Rental, 0, len(rows))
	for _, r := range rows {
		rentals = append(rentals, r.toRental())
	}
	return rentals, nil
}

// Get returns the rental with the given id
func (s *RentalStore) Get(ctx context.Context, id string) (models.Rental, error) {
	id, ok := normalizeID(id)
	if !ok {
		return models.Rental{}, ErrNotFound
	}

	var row rentalRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT "+rentalColumns+" FROM rentals WHERE id = ?"), id); err != nil {
		return models.Rental{}, notFound(err)
	}
	return row.toRental(), nil
}

// Create rents a movie to a customer. The stock decrement is conditional on
// stock being positive, so concurrent rentals of the last copy cannot both
// succeed, and it commits together with the rental row.
func (s *RentalStore) Create(ctx context.Context, req models.RentalRequest) (models.Rental, error) {
	customer, err := s.customers.Get(ctx, req.CustomerID)
	if errors.Is(err, ErrNotFound) {
		return models.Rental{}, ErrInvalidCustomer
	}
	if err != nil {
		return models.Rental{}, fmt.Errorf("lookup customer: %w", err)
	}

	movie, err := s.movies.Get(ctx, req.MovieID)
	if errors.Is(err, ErrNotFound) {
		return models.Rental{}, ErrInvalidMovie
	}
	if err != nil {
		return models.Rental{}, fmt.Errorf("lookup movie: %w", err)
	}

	rental := models.Rental{
		ID:       newID(),
		Customer: customer.Snapshot(),
		Movie:    movie.Snapshot(),
		DateOut:  s.now().UTC().Truncate(time.Microsecond),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Rental{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE movies SET number_in_stock = number_in_stock - 1 WHERE id = ? AND number_in_stock > 0"),
		movie.ID)
	if err != nil {
		return models.Rental{}, fmt.Errorf("decrement stock: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Zero rows also means the movie was deleted after the lookup
		var count int
		if err := tx.GetContext(ctx, &count, tx.Rebind("SELECT COUNT(*) FROM movies WHERE id = ?"), movie.ID); err != nil {
			return models.Rental{}, fmt.Errorf("recheck movie: %w", err)
		}
		if count == 0 {
			return models.Rental{}, ErrInvalidMovie
		}
		return models.Rental{}, ErrMovieNotInStock
	}

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO rentals (`+rentalColumns+`)
		 VALUES (:id, :customer_id, :customer_name, :customer_phone, :customer_is_gold_member,
		 :movie_id, :movie_title, :movie_daily_rental_rate, :date_out, :date_returned, :rental_fee)`,
		newRentalRow(rental))
	if err != nil {
		return models.Rental{}, fmt.Errorf("insert rental: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Rental{}, fmt.Errorf("commit: %w", err)
	}
	return rental, nil
}

// Return closes the customer's latest rental of a movie: it stamps
// dateReturned, computes the fee and puts the copy back in stock.
func (s *RentalStore) Return(ctx context.Context, req models.RentalRequest) (models.Rental, error) {
	customerID, ok := normalizeID(req.CustomerID)
	if !ok {
		return models.Rental{}, ErrNotFound
	}
	movieID, ok := normalizeID(req.MovieID)
	if !ok {
		return models.Rental{}, ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Rental{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row rentalRow
	err = tx.GetContext(ctx, &row, tx.Rebind(
		"SELECT "+rentalColumns+" FROM rentals WHERE customer_id = ? AND movie_id = ? ORDER BY date_out DESC LIMIT 1"),
		customerID, movieID)
	if err != nil {
		return models.Rental{}, notFound(err)
	}

	rental := row.toRental()
	if rental.DateReturned != nil {
		return models.Rental{}, ErrReturnProcessed
	}

	returned := s.now().UTC().Truncate(time.Microsecond)
	fee := rental.Fee(returned)

	result, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE rentals SET date_returned = ?, rental_fee = ? WHERE id = ? AND date_returned IS NULL"),
		returned, fee, rental.ID)
	if err != nil {
		return models.Rental{}, fmt.Errorf("close rental: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return models.Rental{}, ErrReturnProcessed
	}

	// The movie may have been deleted since; the rental still closes.
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE movies SET number_in_stock = number_in_stock + 1 WHERE id = ?"), movieID); err != nil {
		return models.Rental{}, fmt.Errorf("increment stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Rental{}, fmt.Errorf("commit: %w", err)
	}

	rental.DateReturned = &returned
	rental.RentalFee = &fee
	return rental, nil
}
