// Package apperr defines the structured error taxonomy of the insight
// pipeline. Failures are recovered as close to their origin as possible;
// nothing below the orchestrator raises past its own boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Request errors
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA"
	CodeNoReadableText   = "NO_READABLE_TEXT"

	// Upstream / pipeline errors
	CodeUpstreamError  = "UPSTREAM_ERROR"
	CodeRateLimited    = "RATE_LIMITED"
	CodeStageTimeout   = "STAGE_TIMEOUT"
	CodeMessageTimeout = "MESSAGE_TIMEOUT"

	// Internal errors
	CodeInternalError = "INTERNAL_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
	CodeNotConfigured = "NOT_CONFIGURED"
)

// AppError is a structured application error.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code.
func (e *AppError) HTTPStatus() int {
	return e.Status
}

// Constructor functions

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func UnsupportedMedia(message string) *AppError {
	return &AppError{
		Code:    CodeUnsupportedMedia,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NoReadableText reports an upload whose extracted body is empty.
func NoReadableText() *AppError {
	return &AppError{
		Code:    CodeNoReadableText,
		Message: "email contains no readable text",
		Status:  http.StatusUnprocessableEntity,
	}
}

// Upstream wraps a failed call to an external service (LLM endpoint,
// mailbox provider). Callers inside the pipeline convert it into a
// fallback string rather than letting it propagate.
func Upstream(service string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstreamError,
		Message: fmt.Sprintf("upstream call to %s failed", service),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func RateLimited(service string) *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: fmt.Sprintf("rate limit reached for %s", service),
		Status:  http.StatusTooManyRequests,
	}
}

// StageTimeout reports a single pipeline stage exceeding its deadline.
func StageTimeout(stage string) *AppError {
	return &AppError{
		Code:    CodeStageTimeout,
		Message: fmt.Sprintf("stage timed out: %s", stage),
		Status:  http.StatusGatewayTimeout,
	}
}

// MessageTimeout reports the whole-message deadline elapsing.
func MessageTimeout(id string) *AppError {
	return &AppError{
		Code:    CodeMessageTimeout,
		Message: fmt.Sprintf("message processing timed out: %s", id),
		Status:  http.StatusGatewayTimeout,
	}
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

func InternalWithError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NotConfigured reports a feature whose credentials or settings are
// absent. Unlike ConfigError this is an expected deployment state, not
// a server fault, so it maps to 503.
func NotConfigured(feature string) *AppError {
	return &AppError{
		Code:    CodeNotConfigured,
		Message: fmt.Sprintf("%s is not configured", feature),
		Status:  http.StatusServiceUnavailable,
	}
}

func ConfigError(message string) *AppError {
	return &AppError{
		Code:    CodeConfigError,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// Helper functions

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}

// IsUpstream reports whether err is an upstream failure.
func IsUpstream(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeUpstreamError
}

func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
