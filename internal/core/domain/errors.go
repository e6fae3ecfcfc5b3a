package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSelection indicates retrieval was attempted with no
	// documents selected. There is no implicit search-everything
	// fallback.
	ErrNoSelection = errors.New("no documents selected")

	// ErrNotProcessed indicates a document has no embedded chunks yet.
	ErrNotProcessed = errors.New("document not processed")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or returned no usable vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not
	// configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// OpError is a terminal network-layer failure carrying the name of the
// failed operation. Retrieval and generation callers receive these after
// retries exhaust or the circuit breaker rejects the call.
type OpError struct {
	// Op names the failed operation, e.g. "embed" or "generate".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OpError) Unwrap() error {
	return e.Err
}
