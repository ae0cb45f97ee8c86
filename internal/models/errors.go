package models

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable matches any UpstreamError via errors.Is
var ErrUpstreamUnavailable = errors.New("upstream network data unavailable")

// UpstreamError reports that a network source could not be reached or read
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUpstreamUnavailable) succeed
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// ErrInvalidInput creates a validation error
func ErrInvalidInput(message string) error {
	return &ValidationError{Message: message}
}

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
