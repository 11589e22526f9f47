package storage

import (
	"fmt"

	"dersdefteri/internal/service"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = fmt.Errorf("record %w", service.ErrNotFound)
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = fmt.Errorf("record already exists: %w", service.ErrConflict)
	// ErrStatusConflict is returned when a document is not in a state that allows the transition.
	ErrStatusConflict = fmt.Errorf("document status does not allow this operation: %w", service.ErrConflict)
)
