package domain

import "errors"

// Error taxonomy for the ingestion pipeline. Callers classify failures with
// errors.Is and decide whether to retry, skip the record, or abort the run.
var (
	// ErrMalformedInput means chunk boundaries could not be detected in the
	// raw text. Fatal to the ingestion run that produced it.
	ErrMalformedInput = errors.New("malformed alert input")

	// ErrExtractionSchema means the extractor output could not be coerced to
	// the six canonical columns. Fatal to that one chunk; batch ingestion
	// continues with the next chunk.
	ErrExtractionSchema = errors.New("extractor output does not match alert schema")

	// ErrIdentity means an invalid alert kind or log state was passed to
	// identity assignment. Indicates a caller contract violation.
	ErrIdentity = errors.New("invalid identity assignment input")

	// ErrSchema means the durable log is missing required columns. Surfaced
	// immediately with no partial computation.
	ErrSchema = errors.New("alert log schema invalid")

	// ErrGeocoding wraps address resolver failures. Recoverable: the caller
	// may retry, or leave the record without coordinates.
	ErrGeocoding = errors.New("geocoding failed")

	// ErrUpstreamTimeout wraps timeouts from external collaborators
	// (extractor, resolver). Retryable, never a malformed-input condition.
	ErrUpstreamTimeout = errors.New("upstream call timed out")
)
