package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"scanreceiver/internal/logging"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID is a reusable middleware that ensures every request has a request ID.
//
// Behavior:
//   - Reads X-Request-ID from the incoming request header.
//   - If missing, generates a new UUID.
//   - Stores the value in Fiber context locals under RequestIDLocalKey and in the user context,
//     where logging.Logger.WithContext picks it up.
//   - Adds X-Request-ID to the response header with the same value.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))

		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
