package ai

import "errors"

var (
	// ErrMissingAPIKey means the provider key was never configured.
	// Surfaced as a typed error to the caller of that endpoint; the
	// rest of the service keeps running.
	ErrMissingAPIKey = errors.New("ai api key not configured")

	// ErrProviderUnavailable indicates the generative-text endpoint is
	// unreachable or returned a server error.
	ErrProviderUnavailable = errors.New("ai provider unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("ai request timed out")

	// ErrInvalidOutput indicates the provider response could not be
	// parsed into the agreed structured format.
	ErrInvalidOutput = errors.New("invalid ai output format")
)
