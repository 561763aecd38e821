package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("entry not found")
	ErrUnknownYear = errors.New("year not loaded")
)
