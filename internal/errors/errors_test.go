package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
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

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestNotFoundError_ErrorInterface(t *testing.T) {
	var err error = NewNotFoundError("entity not found")
	assert.NotNil(t, err)
	assert.Equal(t, "entity not found", err.Error())
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "email", Message: "invalid email"},
		{Field: "name", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
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

func TestNotFoundError_DetectedThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NewNotFoundError("order with id 42 not found"))

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order with id 42 not found", nfe.Message)
}

func TestConflictError_IsConflictError(t *testing.T) {
	err := NewConflictError("order version mismatch")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "order version mismatch", ce.Error())

	_, ok = IsNotFoundError(err)
	assert.False(t, ok)
}

func TestUnauthorizedAndForbidden_AreDistinct(t *testing.T) {
	unauthorized := NewUnauthorizedError("missing session")
	forbidden := NewForbiddenError("operator role required")

	_, ok := IsUnauthorizedError(unauthorized)
	assert.True(t, ok)
	_, ok = IsForbiddenError(unauthorized)
	assert.False(t, ok)

	_, ok = IsForbiddenError(forbidden)
	assert.True(t, ok)
	_, ok = IsUnauthorizedError(forbidden)
	assert.False(t, ok)
}

func TestGatewayError_Message(t *testing.T) {
	err := NewGatewayError("retrieve", "5115", "token expired", nil)

	assert.Equal(t, "gateway retrieve failed [5115]: token expired", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestGatewayError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGatewayError("initialize", "", "", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	ge, ok := IsGatewayError(fmt.Errorf("checkout: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "initialize", ge.Operation)
}

func TestDeadlockError_IsDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	_, ok := IsDeadlockError(err)
	assert.True(t, ok)
}
