package repo

import "errors"

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("record not found")
