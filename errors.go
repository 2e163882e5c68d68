package rascal

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rascal/blobstore"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/resource"
)

var (
	// ErrInvalidParameter is wrapped by every recoverable argument error.
	ErrInvalidParameter = descriptor.ErrInvalidParameter

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("rascal: engine closed")

	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = errors.New("rascal: snapshot not found")

	// ErrMemoryBudget is returned when an operation needs more memory than
	// the engine's whole budget.
	ErrMemoryBudget = errors.New("rascal: memory budget exceeded")
)

// ErrShapeMismatch indicates that two descriptors have incompatible features.
//
// It wraps ErrInvalidParameter.
type ErrShapeMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: expected %d features, got %d", e.Expected, e.Actual)
}

func (e *ErrShapeMismatch) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrInvalidParameter
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, resource.ErrExceedsBudget) {
		return fmt.Errorf("%w: %w", ErrMemoryBudget, err)
	}

	return err
}
