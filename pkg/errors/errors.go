// Package errors provides typed errors for the application
package errors

import (
	stderrors "errors"
)

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeInternal
	ErrorTypeUnavailable
)

// String returns a label usable in logs and metrics
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeInternal:
		return "internal"
	case ErrorTypeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// baseError is the base implementation for all error types
type baseError struct {
	msg string
}

func (e *baseError) Error() string {
	return e.msg
}

// ValidationError represents invalid input
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// NotFoundError represents a missing entity
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg}}
}

// ConflictError represents a state conflict
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg}}
}

// InternalError represents a failure of a dependency the caller cannot fix
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// ServiceUnavailableError represents a temporarily unavailable dependency
type ServiceUnavailableError struct {
	baseError
}

// NewServiceUnavailableError creates a new ServiceUnavailableError
func NewServiceUnavailableError(msg string) *ServiceUnavailableError {
	return &ServiceUnavailableError{baseError{msg: msg}}
}

// IsValidationError checks if error chain contains a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFoundError checks if error chain contains a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsConflictError checks if error chain contains a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}

// IsInternalError checks if error chain contains an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return stderrors.As(err, &target)
}

// IsServiceUnavailableError checks if error chain contains a ServiceUnavailableError
func IsServiceUnavailableError(err error) bool {
	var target *ServiceUnavailableError
	return stderrors.As(err, &target)
}

// TypeOf classifies an error chain
func TypeOf(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorTypeUnknown
	case IsValidationError(err):
		return ErrorTypeValidation
	case IsNotFoundError(err):
		return ErrorTypeNotFound
	case IsConflictError(err):
		return ErrorTypeConflict
	case IsInternalError(err):
		return ErrorTypeInternal
	case IsServiceUnavailableError(err):
		return ErrorTypeUnavailable
	default:
		return ErrorTypeUnknown
	}
}
