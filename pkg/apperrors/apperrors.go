// Package apperrors defines the error taxonomy shared by the pipeline and
// its HTTP entrypoints. Every error a caller can observe maps onto one of
// these types so handlers can return a JSON body with the right status code
// instead of a raw failure.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError covers malformed or missing request input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError identifies a missing record by resource and id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// GenerationError covers transport-level failures against a generation
// provider: non-success status, empty response, or connection failures.
// It aborts the pipeline with no partial persistence.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider %s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ParseError is the isolated failure of extracting the proposal JSON array
// from a provider's free-text response. Kept distinct from GenerationError
// so parsing edge cases can be tested independently of transport.
type ParseError struct {
	Detail  string
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("proposal parse failed: %s (near %q)", e.Detail, e.Snippet)
	}
	return fmt.Sprintf("proposal parse failed: %s", e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PersistenceError covers store write failures. Aborts remaining writes for
// the request; writes already committed are not rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// EnrichmentError is non-fatal: video enrichment failures degrade that
// proposal's media fields to empty and the pipeline continues. It exists
// for logging, never for surfacing to callers.
type EnrichmentError struct {
	Exercise string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("video enrichment failed for %q: %v", e.Exercise, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error onto the status code the caller should see.
// Unrecognized errors are internal failures.
func HTTPStatus(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
