package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidProfile  = errors.New("invalid user profile")
	ErrIndexOutOfRange = errors.New("saved plan index out of range")
	ErrNoActivePlan    = errors.New("no active fitness plan")
	ErrNoProfile       = errors.New("no user profile submitted")
	ErrSuperseded      = errors.New("request superseded by a newer one")
	ErrUnknownSection  = errors.New("unknown plan section")
)

// Error kinds for calls that leave the process.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrNetwork               = errors.New("network error")
	ErrParse                 = errors.New("parse error")
	ErrUnsupportedCapability = errors.New("unsupported capability")
)

// GenerationError is returned when a fitness plan could not be generated.
// It unwraps to its Kind and to the underlying cause.
type GenerationError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("plan generation failed (%v, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("plan generation failed (%v): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ImageGenerationError is returned when an image could not be produced.
type ImageGenerationError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *ImageGenerationError) Error() string {
	return e.Err.Error()
}

func (e *ImageGenerationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// NewGenerationError builds a GenerationError of the given kind.
func NewGenerationError(kind error, status int, format string, args ...interface{}) *GenerationError {
	return &GenerationError{Kind: kind, StatusCode: status, Err: fmt.Errorf(format, args...)}
}

// NewImageGenerationError builds an ImageGenerationError of the given kind.
func NewImageGenerationError(kind error, status int, format string, args ...interface{}) *ImageGenerationError {
	return &ImageGenerationError{Kind: kind, StatusCode: status, Err: fmt.Errorf(format, args...)}
}
