package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// errorPayload is the body of every error response: {"error": "..."}.
type errorPayload struct {
	Error string `json:"error"`
}

// successPayload is the body of every successful scan endpoint response.
type successPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{Error: message})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// It covers errors raised outside the handlers: unknown routes, wrong methods,
// oversized bodies and panics recovered upstream.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			// Bad requests keep their cause, like ingestion failures do.
			if message == "" {
				message = "Bad request"
			}
			return writeError(c, status, message)
		case fiber.StatusNotFound:
			return writeError(c, status, "Not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "Method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "Request body too large")
		default:
			return writeError(c, status, "Internal server error")
		}
	}
}
