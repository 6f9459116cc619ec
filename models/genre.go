package models

// Genre is a movie category. It is a leaf entity with no references.
type Genre struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// GenreRequest is the body accepted by POST and PUT /genres
type GenreRequest struct {
	Name string `json:"name" validate:"required,min=5,max=50"`
}

// GenreSnapshot is the copy of a genre embedded in a movie at write time
type GenreSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot copies the fields a movie keeps about its genre
func (g Genre) Snapshot() GenreSnapshot {
	return GenreSnapshot{ID: g.ID, Name: g.Name}
}
