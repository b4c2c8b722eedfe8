package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. Entity-specific variants wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when a conditional write loses to a
	// concurrent update: the base record's version no longer matches the
	// stored row. The caller re-reads and retries.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrCollectionNotFound indicates the collection has no items in the catalog.
	ErrCollectionNotFound = fmt.Errorf("%w: collection", ErrNotFound)

	// ErrItemNotFound indicates the requested item is absent from the catalog.
	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)

	// ErrRecordNotFound indicates the requested review record does not exist.
	ErrRecordNotFound = fmt.Errorf("%w: review record", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "item", "review_record")
	Operation string // The operation that failed (e.g., "get", "save")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
