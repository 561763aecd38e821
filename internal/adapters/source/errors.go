package source

import "errors"

// Sentinel kinds for load-time failures. The year-load boundary in the
// app layer translates these into user-facing messages.
var (
	ErrSchema = errors.New("required column missing")
	ErrFetch  = errors.New("source fetch failed")
	ErrParse  = errors.New("malformed source row")
)
