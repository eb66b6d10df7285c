package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/outcome"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = fiber.HeaderXRequestID

// Respond writes out as its [ok, payload] JSON body. Failures use the status
// carried by the error, successes use status.
func Respond[T any](c *fiber.Ctx, out outcome.Outcome[T], status int) error {
	if !out.OK {
		status = apperrors.HTTPStatus(out.Err())
	}
	return c.Status(status).JSON(out)
}

// BadRequest writes a failure outcome for a request that never reached a wrapper.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, outcome.Failure[outcome.None](apperrors.NewValidationError(message)), fiber.StatusBadRequest)
}

// RequestContext assigns a request id, honouring one sent by the caller, and
// copies it into the user context so wrappers log it.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.SetUserContext(WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
