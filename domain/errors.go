package domain

import "errors"

// Error taxonomy surfaced to callers. Everything else (per-record persistence
// failures, degenerate computations) is absorbed internally.
var (
	// ErrValidation marks a malformed or incomplete request. Whole batches
	// and requests are rejected; there is no partial acceptance.
	ErrValidation = errors.New("invalid request")

	// ErrDependencyUnavailable marks a downstream signal source (similarity
	// index, catalog) that is unreachable or timed out. Surfaced distinctly
	// from validation so callers can retry.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
