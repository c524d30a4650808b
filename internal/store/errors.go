package store

import "errors"

// ErrNotFound is returned when a key is absent from the database.
var ErrNotFound = errors.New("not found")
