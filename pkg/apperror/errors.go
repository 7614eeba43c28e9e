// Package apperror holds the error taxonomy shared by the orchestration core.
package apperror

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned by the segmenter and the embedding builder for blank text.
var ErrEmptyInput = errors.New("empty input")

// InputError is a user-caused failure: a missing or malformed required field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

// ProviderError wraps a failed or timed-out call to an external collaborator.
type ProviderError struct {
	Op  string // "completion", "embedding", "store", "scrape", "send"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}

// ShapeError reports an embedding of the wrong dimensionality or with non-finite values.
type ShapeError struct {
	Expected int
	Got      int
	Reason   string
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid embedding: %s", e.Reason)
	}
	return fmt.Sprintf("invalid embedding: expected %d dimensions, got %d", e.Expected, e.Got)
}

// OrchestrationError is the catch-all recorded at the orchestrator boundary.
type OrchestrationError struct {
	Err error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("orchestration error: %v", e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target) || errors.Is(err, ErrEmptyInput)
}

func IsShapeError(err error) bool {
	var target *ShapeError
	return errors.As(err, &target)
}
