package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeConflict       ErrorType = "CONFLICT_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeServiceCall    ErrorType = "SERVICE_CALL_FAILURE"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrObjectNotFound     = errors.New("object not found")
	ErrInvalidPath        = errors.New("invalid path")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("resource conflict")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict)
}

func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// NewServiceCallFailure wraps an error raised by an external collaborator during op.
// Typed causes keep their HTTP code so not-found stays a 404 at the edge.
func NewServiceCallFailure(op string, cause error) *AppError {
	code := http.StatusBadGateway
	var appErr *AppError
	if errors.As(cause, &appErr) && appErr.HTTPCode != 0 {
		code = appErr.HTTPCode
	} else if IsNotFound(cause) {
		code = http.StatusNotFound
	} else if IsAuthentication(cause) {
		code = http.StatusUnauthorized
	} else if IsValidation(cause) {
		code = http.StatusBadRequest
	} else if IsConflict(cause) {
		code = http.StatusConflict
	}
	return NewAppError(ErrorTypeServiceCall, op+" failed", code).
		WithCause(cause).
		WithDetail("operation", op)
}

// HTTPStatus returns the HTTP status associated with err, 500 when unknown.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if hasType(err, ErrorTypeNotFound) {
		return true
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrObjectNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	if hasType(err, ErrorTypeValidation) {
		return true
	}
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidPath)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	if hasType(err, ErrorTypeAuthentication) {
		return true
	}
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	if hasType(err, ErrorTypeConflict) {
		return true
	}
	return errors.Is(err, ErrConflict)
}

// hasType reports whether any AppError in err's chain has type t.
func hasType(err error, t ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Type == t {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
