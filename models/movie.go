package models

// Movie is a rentable title. Genre is an owned snapshot taken when the movie
// was last written; renaming the genre afterwards does not change it.
type Movie struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Genre           GenreSnapshot `json:"genre"`
	NumberInStock   int           `json:"numberInStock"`
	DailyRentalRate float64       `json:"dailyRentalRate"`
}

// MovieRequest is the body accepted by POST and PUT /movies.
// Numeric fields are pointers so that an explicit zero passes "required".
type MovieRequest struct {
	Title           string   `json:"title" validate:"required,max=255"`
	GenreID         string   `json:"genreId" validate:"required"`
	NumberInStock   *int     `json:"numberInStock" validate:"required,min=0,max=255"`
	DailyRentalRate *float64 `json:"dailyRentalRate" validate:"required,min=0,max=255"`
}

// MovieSnapshot is the copy of a movie embedded in a rental
type MovieSnapshot struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DailyRentalRate float64 `json:"dailyRentalRate"`
}

// Snapshot copies the fields a rental keeps about its movie
func (m Movie) Snapshot() MovieSnapshot {
	return MovieSnapshot{ID: m.ID, Title: m.Title, DailyRentalRate: m.DailyRentalRate}
}
