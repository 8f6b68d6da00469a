package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g. ErrDiagramNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned by RunInTransaction when the
	// transaction itself cannot begin or commit, as opposed to an error
	// from the work done inside it.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrDiagramNotFound indicates that the requested diagram does not exist.
	ErrDiagramNotFound = fmt.Errorf("%w: diagram", ErrNotFound)

	// ErrPreferenceNotFound indicates that the requested user preference
	// record does not exist.
	ErrPreferenceNotFound = fmt.Errorf("%w: user preference", ErrNotFound)
)
