package rag

import (
	"fmt"
)

// DefaultDimension matches text-embedding-ada-002.
const DefaultDimension = 1536

// Vector is a fixed-length embedding. Construct through NewVector so the
// dimension invariant holds everywhere a vector exists.
type Vector []float32

// NewVector validates the provider output against the required dimension.
func NewVector(raw []float32, dim int) (Vector, error) {
	if len(raw) != dim {
		return nil, &EmbeddingError{
			Reason: fmt.Sprintf("embedding has %d dimensions, expected %d", len(raw), dim),
		}
	}
	return Vector(raw), nil
}

// EmbeddingError wraps any failure to produce a valid embedding: empty
// input, provider errors, or a dimension mismatch.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
