package store

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// normalizeID parses id as a UUID, reporting false for anything malformed
func normalizeID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func newID() string {
	return uuid.NewString()
}

// notFound maps sql.ErrNoRows to ErrNotFound and leaves other errors alone
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CanonicalID returns id in the form stores persist, or false when id
// can never match a record
func CanonicalID(id string) (string, bool) {
	return normalizeID(id)
}
