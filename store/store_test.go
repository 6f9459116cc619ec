package store_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"vidly/database/dbtest"
	"vidly/models"
	"vidly/store"

	"github.com/google/uuid"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

type stores struct {
	genres    *store.GenreStore
	customers *store.CustomerStore
	movies    *store.MovieStore
	rentals   *store.RentalStore
	users     *store.UserStore
}

func newStores(t *testing.T) stores {
	t.Helper()
	db := dbtest.New(t)
	genres := store.NewGenreStore(db)
	customers := store.NewCustomerStore(db)
	movies := store.NewMovieStore(db, genres)
	return stores{
		genres:    genres,
		customers: customers,
		movies:    movies,
		rentals:   store.NewRentalStore(db, customers, movies),
		users:     store.NewUserStore(db),
	}
}

func intPtr(n int) *int { return &n }
func floatPtr(f float64) *float64 { return &f }

func (s stores) seedMovie(t *testing.T, stock int) (models.Customer, models.Movie) {
	t.Helper()
	ctx := context.Background()

	genre, err := s.genres.Create(ctx, models.GenreRequest{Name: "Comedy"})
	if err != nil {
		t.Fatalf("create genre: %v", err)
	}
	movie, err := s.movies.Create(ctx, models.MovieRequest{
		Title:           "Airplane!",
		GenreID:         genre.ID,
		NumberInStock:   intPtr(stock),
		DailyRentalRate: floatPtr(2),
	})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	customer, err := s.customers.Create(ctx, models.CustomerRequest{Name: "Jane Doe", Phone: "555-0100"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer, movie
}

func TestGenreCRUD(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	for _, name := range []string{"Thriller", "Comedy", "Drama"} {
		if _, err := s.genres.Create(ctx, models.GenreRequest{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	genres, err := s.genres.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(genres) != 3 || genres[0].Name != "Comedy" || genres[2].Name != "Thriller" {
		t.Fatalf("expected genres sorted by name, got %+v", genres)
	}

	updated, err := s.genres.Update(ctx, genres[0].ID, models.GenreRequest{Name: "Comedies"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.genres.Get(ctx, genres[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != updated {
		t.Fatalf("get = %+v, want %+v", got, updated)
	}

	removed, err := s.genres.Delete(ctx, got.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != got {
		t.Fatalf("delete returned %+v, want %+v", removed, got)
	}
	if _, err := s.genres.Get(ctx, got.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEmptyListsAreNotNil(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	genres, err := s.genres.List(ctx)
	if err != nil || genres == nil {
		t.Fatalf("genres = %v, err = %v", genres, err)
	}
	movies, err := s.movies.List(ctx)
	if err != nil || movies == nil {
		t.Fatalf("movies = %v, err = %v", movies, err)
	}
	rentals, err := s.rentals.List(ctx)
	if err != nil || rentals == nil {
		t.Fatalf("rentals = %v, err = %v", rentals, err)
	}
}

func TestMalformedAndMissingIDsAreNotFound(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	for _, id := range []string{"1", "not-an-id", uuid.NewString()} {
		if _, err := s.genres.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("genres.Get(%q) = %v", id, err)
		}
		if _, err := s.genres.Update(ctx, id, models.GenreRequest{Name: "Horror"}); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("genres.Update(%q) = %v", id, err)
		}
		if _, err := s.customers.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("customers.Delete(%q) = %v", id, err)
		}
		if _, err := s.movies.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("movies.Get(%q) = %v", id, err)
		}
		if _, err := s.rentals.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("rentals.Get(%q) = %v", id, err)
		}
	}
}

func TestCustomerUpdate(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	c, err := s.customers.Create(ctx, models.CustomerRequest{Name: "Jane Doe", Phone: "555-0100"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := s.customers.Update(ctx, c.ID, models.CustomerRequest{Name: "Jane Roe", Phone: "555-0199", IsGoldMember: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.customers.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != updated || !got.IsGoldMember {
		t.Fatalf("get = %+v, want %+v", got, updated)
	}
}

func TestMovieRequiresExistingGenre(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	req := models.MovieRequest{
		Title:           "Alien",
		GenreID:         uuid.NewString(),
		NumberInStock:   intPtr(1),
		DailyRentalRate: floatPtr(1),
	}
	if _, err := s.movies.Create(ctx, req); !errors.Is(err, store.ErrInvalidGenre) {
		t.Fatalf("create with unknown genre: %v", err)
	}

	req.GenreID = "bogus"
	if _, err := s.movies.Create(ctx, req); !errors.Is(err, store.ErrInvalidGenre) {
		t.Fatalf("create with malformed genre: %v", err)
	}
}

func TestMovieUpdateErrors(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	_, movie := s.seedMovie(t, 1)

	req := models.MovieRequest{
		Title:           "Airplane II",
		GenreID:         movie.Genre.ID,
		NumberInStock:   intPtr(2),
		DailyRentalRate: floatPtr(3),
	}
	if _, err := s.movies.Update(ctx, uuid.NewString(), req); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing movie: %v", err)
	}

	req.GenreID = uuid.NewString()
	if _, err := s.movies.Update(ctx, movie.ID, req); !errors.Is(err, store.ErrInvalidGenre) {
		t.Fatalf("update with unknown genre: %v", err)
	}
}

func TestMovieGenreIsSnapshot(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	_, movie := s.seedMovie(t, 1)

	if _, err := s.genres.Update(ctx, movie.Genre.ID, models.GenreRequest{Name: "Slapstick"}); err != nil {
		t.Fatalf("rename genre: %v", err)
	}

	got, err := s.movies.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if got.Genre.Name != "Comedy" {
		t.Fatalf("genre snapshot changed to %q", got.Genre.Name)
	}

	// Rewriting the movie picks up the new name
	updated, err := s.movies.Update(ctx, movie.ID, models.MovieRequest{
		Title:           got.Title,
		GenreID:         got.Genre.ID,
		NumberInStock:   intPtr(got.NumberInStock),
		DailyRentalRate: floatPtr(got.DailyRentalRate),
	})
	if err != nil {
		t.Fatalf("update movie: %v", err)
	}
	if updated.Genre.Name != "Slapstick" {
		t.Fatalf("expected fresh snapshot, got %q", updated.Genre.Name)
	}
}

func TestRentalCreateDecrementsStock(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	customer, movie := s.seedMovie(t, 2)

	rental, err := s.rentals.Create(ctx, models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID})
	if err != nil {
		t.Fatalf("create rental: %v", err)
	}
	if rental.Customer != customer.Snapshot() || rental.Movie != movie.Snapshot() {
		t.Fatalf("unexpected snapshots %+v", rental)
	}
	if rental.DateReturned != nil || rental.RentalFee != nil {
		t.Fatalf("new rental should be open: %+v", rental)
	}

	got, err := s.movies.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if got.NumberInStock != 1 {
		t.Fatalf("stock = %d, want 1", got.NumberInStock)
	}

	stored, err := s.rentals.Get(ctx, rental.ID)
	if err != nil {
		t.Fatalf("get rental: %v", err)
	}
	if !stored.DateOut.Equal(rental.DateOut) || stored.Customer != rental.Customer || stored.Movie != rental.Movie {
		t.Fatalf("stored rental %+v differs from %+v", stored, rental)
	}
}

func TestRentalCreateValidation(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	customer, movie := s.seedMovie(t, 0)

	tests := []struct {
		name string
		req  models.RentalRequest
		want error
	}{
		{"unknown customer", models.RentalRequest{CustomerID: uuid.NewString(), MovieID: movie.ID}, store.ErrInvalidCustomer},
		{"malformed customer", models.RentalRequest{CustomerID: "1", MovieID: movie.ID}, store.ErrInvalidCustomer},
		{"unknown movie", models.RentalRequest{CustomerID: customer.ID, MovieID: uuid.NewString()}, store.ErrInvalidMovie},
		{"out of stock", models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID}, store.ErrMovieNotInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.rentals.Create(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	got, err := s.movies.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if got.NumberInStock != 0 {
		t.Fatalf("stock changed to %d", got.NumberInStock)
	}
	rentals, err := s.rentals.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rentals) != 0 {
		t.Fatalf("expected no rentals, got %d", len(rentals))
	}
}

func TestConcurrentRentalsOfLastCopy(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	customer, movie := s.seedMovie(t, 1)

	const workers = 5
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.rentals.Create(ctx, models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID})
		}(i)
	}
	wg.Wait()

	var ok, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrMovieNotInStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || outOfStock != workers-1 {
		t.Fatalf("ok = %d, out of stock = %d", ok, outOfStock)
	}

	got, err := s.movies.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if got.NumberInStock != 0 {
		t.Fatalf("stock = %d, want 0", got.NumberInStock)
	}
}

func TestRentalReturn(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	customer, movie := s.seedMovie(t, 1)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.rentals.WithClock(func() time.Time { return clock })

	req := models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID}
	if _, err := s.rentals.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}

	clock = clock.Add(3*24*time.Hour + time.Hour)
	returned, err := s.rentals.Return(ctx, req)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.DateReturned == nil || !returned.DateReturned.Equal(clock) {
		t.Fatalf("dateReturned = %v", returned.DateReturned)
	}
	if returned.RentalFee == nil || *returned.RentalFee != 6 {
		t.Fatalf("rentalFee = %v, want 6", returned.RentalFee)
	}

	got, err := s.movies.Get(ctx, movie.ID)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	if got.NumberInStock != 1 {
		t.Fatalf("stock = %d, want 1", got.NumberInStock)
	}

	if _, err := s.rentals.Return(ctx, req); !errors.Is(err, store.ErrReturnProcessed) {
		t.Fatalf("second return: %v", err)
	}
}

func TestRentalReturnWithoutRental(t *testing.T) {
	s := newStores(t)
	customer, movie := s.seedMovie(t, 1)

	_, err := s.rentals.Return(context.Background(), models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUserEmailIsUnique(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	user := models.User{Name: "Jane Doe", Email: "jane@example.com", Password: "hash"}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.users.Create(ctx, user); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("duplicate create: %v", err)
	}

	found, err := s.users.FindByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID || found.Password != "hash" {
		t.Fatalf("found = %+v", found)
	}
	if _, err := s.users.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing email: %v", err)
	}
}

func TestRentalOfMovieDeletedAfterLookup(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	customer, movie := s.seedMovie(t, 1)

	// The clock is read between the movie lookup and the stock update
	s.rentals.WithClock(func() time.Time {
		if _, err := s.movies.Delete(ctx, movie.ID); err != nil {
			t.Errorf("delete movie: %v", err)
		}
		return time.Now()
	})

	_, err := s.rentals.Create(ctx, models.RentalRequest{CustomerID: customer.ID, MovieID: movie.ID})
	if !errors.Is(err, store.ErrInvalidMovie) {
		t.Fatalf("got %v, want ErrInvalidMovie", err)
	}

	rentals, err := s.rentals.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rentals) != 0 {
		t.Fatalf("got %d rentals, want 0", len(rentals))
	}
}
