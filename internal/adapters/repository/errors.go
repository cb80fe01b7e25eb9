package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("frame not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrInvalidLimit  = errors.New("invalid limit")
)
