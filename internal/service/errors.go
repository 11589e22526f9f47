package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the caller has no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a resource is not in a state that allows the operation.
	ErrConflict = errors.New("conflict")
	// ErrTransport is returned when a network call or a storage transfer fails.
	ErrTransport = errors.New("transport error")
	// ErrExternalService is returned when an external service answers with an error.
	ErrExternalService = errors.New("external service error")
	// ErrParse is returned when an external response cannot be interpreted.
	ErrParse = errors.New("parse error")
	// ErrPersistence is returned when writing to the relational store fails.
	ErrPersistence = errors.New("persistence error")
	// ErrUnavailable is returned when an optional feature is not configured.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Pipeline stages reported by StageError.
const (
	StageUpload     = "upload"
	StageTransition = "transition"
	StageSign       = "sign"
	StageExtract    = "extract"
	StageNormalize  = "normalize"
	StagePersist    = "persist"
)

// StageError records which pipeline stage failed and, once the document is
// known, its filename.
type StageError struct {
	Stage    string
	Filename string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Classify wraps err with kind unless it already carries it.
func Classify(kind, err error) error {
	if err == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
