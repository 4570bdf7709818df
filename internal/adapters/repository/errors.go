package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrInvalidEntry = errors.New("invalid history entry")
)
