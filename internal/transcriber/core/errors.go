// internal/transcriber/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Domain specific errors
var (
	// Pipeline errors
	ErrUnsupportedCapability = errors.New("speech recognition is not supported in this environment")
	ErrNoData                = errors.New("no transcription available")
	ErrBusy                  = errors.New("a transcription is already running")
	ErrEmptyResult           = errors.New("recognizer returned no speech")
	ErrRateLimited           = errors.New("rate limit exceeded")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNoAudio      = errors.New("no audio file selected")
)

// ValidationError describes rejected user input. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: message,
	}
}

// RecognitionError carries the error code reported by a recognition engine
type RecognitionError struct {
	Code    string
	Message string
	Cause   error
}

func (e RecognitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("recognition error %s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("recognition error %s: %s", e.Code, e.Message)
}

func (e RecognitionError) Unwrap() error {
	return e.Cause
}

// NewRecognitionError creates a new recognition error
func NewRecognitionError(code, message string, cause error) RecognitionError {
	return RecognitionError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns a short machine readable code for err, used in metrics
func ErrorCode(err error) string {
	var recErr RecognitionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &recErr):
		return recErr.Code
	case errors.Is(err, ErrUnsupportedCapability):
		return "unsupported_capability"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoAudio):
		return "no_audio"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	default:
		return "internal"
	}
}
