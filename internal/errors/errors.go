package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// IllegalStateError reports an operation that is well-formed but not allowed
// in the aggregate's current state, e.g. reverting the only checkpoint.
type IllegalStateError struct {
	Message string
}

func (e *IllegalStateError) Error() string {
	return e.Message
}

func NewIllegalStateError(message string) *IllegalStateError {
	return &IllegalStateError{Message: message}
}

func IsIllegalStateError(err error) (*IllegalStateError, bool) {
	var ise *IllegalStateError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// TransientDependencyError marks a failure of a collaborator (broker, order
// lookup) that may succeed if attempted later.
type TransientDependencyError struct {
	Dependency string
	Cause      error
}

func (e *TransientDependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Cause)
	}
	return fmt.Sprintf("%s unavailable", e.Dependency)
}

func (e *TransientDependencyError) Unwrap() error {
	return e.Cause
}

func NewTransientDependencyError(dependency string, cause error) *TransientDependencyError {
	return &TransientDependencyError{
		Dependency: dependency,
		Cause:      cause,
	}
}

func IsTransientDependencyError(err error) (*TransientDependencyError, bool) {
	var tde *TransientDependencyError
	if errors.As(err, &tde) {
		return tde, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
