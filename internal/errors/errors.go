package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "validation"
	CategoryUnauthorized ErrorCategory = "unauthorized"
	CategoryForbidden    ErrorCategory = "forbidden"
	CategoryNotFound     ErrorCategory = "not_found"
	CategoryTimeout      ErrorCategory = "timeout"
	CategoryRateLimit    ErrorCategory = "rate_limit"
	CategoryExternalAPI  ErrorCategory = "external_api"
	CategoryInternal     ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with the HTTP mapping and context the
// handlers need.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Category)), e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Message returns the user-facing message. Internal errors keep their detail
// server-side.
func (e *AppError) Message() string {
	if e.Category == CategoryInternal {
		return "An unexpected error occurred."
	}
	return e.ErrBuilder.Msg
}

func newAppError(code errbuilder.ErrCode, msg string, cause error, category ErrorCategory, status int) *AppError {
	builder := errbuilder.New().WithCode(code).WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates a 400 error for bad client input.
func NewValidationError(message string, cause error) *AppError {
	return newAppError(errbuilder.CodeInvalidArgument, message, cause, CategoryValidation, http.StatusBadRequest)
}

// NewUnauthorizedError creates a 401 error for missing or bad credentials.
func NewUnauthorizedError(message string) *AppError {
	return newAppError(errbuilder.CodeUnauthenticated, message, nil, CategoryUnauthorized, http.StatusUnauthorized)
}

// NewForbiddenError creates a 403 error for an authenticated but unpermitted
// request.
func NewForbiddenError(message string) *AppError {
	return newAppError(errbuilder.CodePermissionDenied, message, nil, CategoryForbidden, http.StatusForbidden)
}

// NewNotFoundError creates a 404 error. Ownership violations use this too so
// another user's resources are indistinguishable from absent ones.
func NewNotFoundError(message string) *AppError {
	return newAppError(errbuilder.CodeNotFound, message, nil, CategoryNotFound, http.StatusNotFound)
}

// NewTimeoutError creates a 504 error for an upstream deadline.
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(errbuilder.CodeDeadlineExceeded, message, cause, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewRateLimitError creates a 429 error.
func NewRateLimitError(message string) *AppError {
	return newAppError(errbuilder.CodeResourceExhausted, message, nil, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewExternalAPIError creates a 502 error for a failed upstream dependency.
func NewExternalAPIError(apiName string, cause error) *AppError {
	return newAppError(errbuilder.CodeUnavailable, fmt.Sprintf("%s API error", apiName), cause, CategoryExternalAPI, http.StatusBadGateway)
}

// NewInternalError creates a 500 error. The message is logged server-side
// only; clients get a generic message.
func NewInternalError(message string, cause error) *AppError {
	return newAppError(errbuilder.CodeInternal, message, cause, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError("Request deadline exceeded", err)
	}

	return NewInternalError(err.Error(), err)
}

// Abort logs the error and writes the structured error response, aborting
// the handler chain.
func Abort(c *gin.Context, err error) {
	appErr := ToAppError(err)
	LogError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"success": false,
		"message": appErr.Message(),
	})
}

// RecoveryHandler provides panic recovery with structured error responses.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(fmt.Sprintf("panic recovered: %v", recovered), fmt.Errorf("%v", recovered))
		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
			"success": false,
			"message": appErr.Message(),
		})
	})
}

// LogError logs an error with level chosen by its category.
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	msg := err.ErrBuilder.Msg
	cause := err.ErrBuilder.Unwrap()

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryUnauthorized, CategoryForbidden, CategoryNotFound:
		logEntry.Warn(msg)
	case CategoryTimeout, CategoryExternalAPI:
		if cause != nil {
			logEntry.Info(msg, "cause", cause)
		} else {
			logEntry.Info(msg)
		}
	default:
		if cause != nil {
			logEntry.Error(msg, "cause", cause)
		} else {
			logEntry.Error(msg)
		}
	}
}
