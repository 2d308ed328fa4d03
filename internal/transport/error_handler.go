// Package transport holds the fiber plumbing shared by the mock backend
// routes.
package transport

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Symbolic error codes written into failure envelopes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

const genericMessage = "Bir hata oluştu"

// Error is a request failure carrying a symbolic code and optional field
// details.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string { return e.Message }

func NewError(status int, code string, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) WithDetails(details any) *Error {
	out := *e
	out.Details = details
	return &out
}

// Envelope is the response wrapper used for every mock backend reply.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// OK writes a success envelope.
func OK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		env := Envelope{Message: genericMessage, Code: CodeInternal}
		status := fiber.StatusInternalServerError

		var reqErr *Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &reqErr):
			status = reqErr.Status
			env.Code = reqErr.Code
			env.Message = reqErr.Message
			env.Details = reqErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			env.Code = codeForStatus(fiberErr.Code)
			env.Message = fiberErr.Message
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("code", env.Code),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request error", fields...)
		} else {
			logger.Warn("request rejected", fields...)
		}

		return c.Status(status).JSON(env)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return http.StatusText(status)
	}
}
