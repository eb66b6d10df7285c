// Package outcome implements the two-element result every wrapper method returns:
// [true, payload] on success and [false, message] on failure.
package outcome

import (
	"encoding/json"
	"fmt"

	apperrors "firebase-kit/internal/shared/errors"
)

// None is the payload of operations with no meaningful return value.
type None struct{}

// MarshalJSON renders None as null.
func (None) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Outcome is the result of a wrapper call.
type Outcome[T any] struct {
	OK      bool
	Payload T
	Message string
	err     error
}

// Success builds a successful outcome.
func Success[T any](payload T) Outcome[T] {
	return Outcome[T]{OK: true, Payload: payload}
}

// Failure builds a failed outcome from err.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = apperrors.NewInternalError("unknown failure")
	}
	return Outcome[T]{OK: false, Message: err.Error(), err: err}
}

// Err returns the error behind a failed outcome, nil on success.
func (o Outcome[T]) Err() error {
	return o.err
}

// Unpack returns the outcome as the (success, payload) pair; on failure the
// payload is the error message.
func (o Outcome[T]) Unpack() (bool, any) {
	if o.OK {
		return true, o.Payload
	}
	return false, o.Message
}

// MarshalJSON renders the outcome as a two-element array.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	ok, payload := o.Unpack()
	return json.Marshal([2]any{ok, payload})
}

// Capture runs fn at a wrapper method boundary. Errors become a
// ServiceCallFailure for op and panics are recovered into failures, so
// nothing raised by a collaborator escapes the call.
func Capture[T any](op string, fn func() (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure[T](apperrors.NewServiceCallFailure(op, fmt.Errorf("panic: %v", r)))
		}
	}()

	payload, err := fn()
	if err != nil {
		return Failure[T](apperrors.NewServiceCallFailure(op, err))
	}
	return Success(payload)
}

// CaptureNone is Capture for operations that return nothing.
func CaptureNone(op string, fn func() error) Outcome[None] {
	return Capture(op, func() (None, error) {
		return None{}, fn()
	})
}
