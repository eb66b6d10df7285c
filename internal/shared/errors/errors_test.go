package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "name").WithComponent("docstore")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "docstore", err.Component)
	assert.Equal(t, "name", err.Details["field"])
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	err := NewNotFoundError("document").WithCause(ErrDocumentNotFound)
	assert.Equal(t, ErrDocumentNotFound, err.Unwrap())
	assert.Equal(t, "document not found: document not found", err.Error())
}

func TestServiceCallFailure_KeepsCauseClassification(t *testing.T) {
	notFound := NewServiceCallFailure("read", fmt.Errorf("%w: users/u1", ErrDocumentNotFound))
	assert.Equal(t, ErrorTypeServiceCall, notFound.Type)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPCode)
	assert.True(t, IsNotFound(notFound))
	assert.Equal(t, "read", notFound.Details["operation"])

	typed := NewServiceCallFailure("verify", NewAuthenticationError("bad cookie"))
	assert.Equal(t, http.StatusUnauthorized, typed.HTTPCode)
	assert.True(t, IsAuthentication(typed))

	opaque := NewServiceCallFailure("upload", fmt.Errorf("connection reset"))
	assert.Equal(t, http.StatusBadGateway, opaque.HTTPCode)
	assert.Equal(t, "upload failed: connection reset", opaque.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(NewConflictError("exists")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("plain")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrapped: %w", NewNotFoundError("user"))))
}

func TestIsHelpers(t *testing.T) {
	nf := NewNotFoundError("doc")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
	assert.False(t, IsAuthentication(nf))
	assert.False(t, IsConflict(nf))

	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsValidation(fmt.Errorf("x: %w", ErrInvalidPath)))
	assert.True(t, IsAuthentication(ErrTokenExpired))
	assert.True(t, IsConflict(ErrConflict))
	assert.True(t, IsNotFound(ErrObjectNotFound))
}
