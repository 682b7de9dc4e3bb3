package services

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey short-circuits an analysis before any network call.
var ErrMissingAPIKey = errors.New("VISION_API_KEY not configured")

// ErrInvalidImage wraps data-URL problems in the request payload.
var ErrInvalidImage = errors.New("invalid image payload")

// TransportError covers network failures and non-2xx upstream responses.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vision request failed: %v", e.Err)
	}
	return fmt.Sprintf("vision API error (status %d): %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means no JSON object could be extracted from
// the completion text. Snippet carries a truncated prefix of the raw
// text for diagnostics.
type MalformedResponseError struct {
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response, no JSON object found: %s", e.Snippet)
}

// ValidationError names the field path that failed schema validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid analysis: %s %s", e.Field, e.Reason)
}

const snippetLen = 200

func snippet(s string) string {
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
