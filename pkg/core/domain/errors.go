package domain

import "errors"

var (
	// ErrDataUnavailable means the record store could not be read or written.
	ErrDataUnavailable = errors.New("catalog data unavailable")
	// ErrNotFound means a single-key lookup found nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery means the request was malformed and was rejected before running.
	ErrInvalidQuery = errors.New("invalid query")
)
