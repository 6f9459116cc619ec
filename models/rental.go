package models

import "time"

// Rental records one movie rented by one customer.
// DateReturned and RentalFee stay nil until the movie comes back.
type Rental struct {
	ID           string           `json:"id"`
	Customer     CustomerSnapshot `json:"customer"`
	Movie        MovieSnapshot    `json:"movie"`
	DateOut      time.Time        `json:"dateOut"`
	DateReturned *time.Time       `json:"dateReturned"`
	RentalFee    *float64         `json:"rentalFee"`
}

// RentalRequest is the body accepted by POST /rentals and POST /returns
type RentalRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	MovieID    string `json:"movieId" validate:"required"`
}

// Fee computes the rental fee for a return at the given time:
// whole days out multiplied by the daily rate.
func (r Rental) Fee(returnedAt time.Time) float64 {
	days := int(returnedAt.Sub(r.DateOut).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days) * r.Movie.DailyRentalRate
}
