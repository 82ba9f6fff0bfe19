package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "tracked order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading checkpoint: %w", NewNotFoundError("checkpoint 7 not found"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "checkpoint 7 not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "description", Message: "description is required"},
		{Field: "status", Message: "unknown status"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestValidationError_IsValidationError(t *testing.T) {
	var err error = NewValidationError("bad input")

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "bad input", ve.Message)

	_, ok = IsValidationError(NewNotFoundError("x"))
	assert.False(t, ok)
}

func TestIllegalStateError_IsIllegalStateError(t *testing.T) {
	err := fmt.Errorf("revert: %w", NewIllegalStateError("cannot revert further"))

	ise, ok := IsIllegalStateError(err)
	assert.True(t, ok)
	assert.Equal(t, "cannot revert further", ise.Message)
	assert.Equal(t, "revert: cannot revert further", err.Error())
}

func TestConflictError_IsConflictError(t *testing.T) {
	err := NewConflictError("order already tracked")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "order already tracked", ce.Error())
}

func TestDeadlockError_IsDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Message)
}

func TestTransientDependencyError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransientDependencyError("notification gateway", cause)

	assert.Equal(t, "notification gateway unavailable: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))

	tde, ok := IsTransientDependencyError(fmt.Errorf("send: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "notification gateway", tde.Dependency)
}

func TestTransientDependencyError_NilCause(t *testing.T) {
	err := NewTransientDependencyError("order lookup", nil)

	assert.Equal(t, "order lookup unavailable", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
