// Package middleware holds the request plumbing shared by every route:
// panic recovery, request IDs, structured request logging and the
// centralized error handler.
package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"insight_server/pkg/apperr"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler is the centralized error handler for Fiber. Handlers
// return errors; only this function decides status codes and shapes.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("request_id").(string)

		response := ErrorResponse{
			Success:   false,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		var status int

		switch e := err.(type) {
		case *apperr.AppError:
			status = e.Status
			response.Error = ErrorDetail{
				Code:    e.Code,
				Message: e.Message,
			}

			evt := log.Warn()
			if status >= 500 {
				evt = log.Error()
			}
			evt.Str("request_id", requestID).
				Str("error_code", e.Code).
				Err(e.Err).
				Msg(e.Message)

		case *fiber.Error:
			status = e.Code
			response.Error = ErrorDetail{
				Code:    mapHTTPStatusToCode(e.Code),
				Message: e.Message,
			}

		default:
			status = fiber.StatusInternalServerError
			response.Error = ErrorDetail{
				Code:    apperr.CodeInternalError,
				Message: "An unexpected error occurred",
			}

			log.Error().
				Str("request_id", requestID).
				Err(err).
				Str("stack", string(debug.Stack())).
				Msg("unexpected error")
		}

		return c.Status(status).JSON(response)
	}
}

// RequestID middleware adds a unique request ID to each request
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

// RequestLogger logs incoming requests and their responses
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID, _ := c.Locals("request_id").(string)

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		evt := log.Info()
		switch {
		case status >= 500:
			evt = log.Error()
		case status >= 400:
			evt = log.Warn()
		}
		evt.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("duration_ms", float64(duration.Microseconds())/1000.0).
			Str("ip", c.IP()).
			Msg("request completed")

		return err
	}
}

// Recover middleware recovers from panics
func Recover(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("request_id").(string)

				log.Error().
					Str("request_id", requestID).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("method", c.Method()).
					Str("path", c.Path()).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
					Success:   false,
					RequestID: requestID,
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					Error: ErrorDetail{
						Code:    apperr.CodeInternalError,
						Message: "An unexpected error occurred",
					},
				})
			}
		}()
		return c.Next()
	}
}

func mapHTTPStatusToCode(status int) string {
	switch status {
	case 400:
		return apperr.CodeBadRequest
	case 404:
		return "NOT_FOUND"
	case 415:
		return apperr.CodeUnsupportedMedia
	case 422:
		return apperr.CodeNoReadableText
	case 429:
		return apperr.CodeRateLimited
	case 500:
		return apperr.CodeInternalError
	case 502, 503, 504:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
