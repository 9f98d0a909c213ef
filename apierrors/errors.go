// Package apierrors defines the error taxonomy returned by the API and the
// helper that renders it on a gin context.
package apierrors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes.
const (
	CodeNotFound     = "not_found"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeValidation   = "validation_error"
	CodeConflict     = "conflict"
	CodeBadRequest   = "bad_request"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is an error that knows its HTTP status.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches any APIError carrying the same code, so callers can write
// errors.Is(err, apierrors.ErrNotFound).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound     = &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Not found"}
	ErrForbidden    = &APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: "Access denied"}
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrValidation   = &APIError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "Validation failed"}
	ErrConflict     = &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: "Conflict"}
	ErrRateLimited  = &APIError{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "Too many requests"}
	ErrInternal     = &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error"}
)

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// Forbidden reports an authenticated caller acting on something it does not own.
func Forbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// Unauthorized reports bad credentials.
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

// BadRequest reports a request that cannot be processed as sent.
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message}
}

// Validation reports one or more invalid fields.
func Validation(fields ...FieldError) *APIError {
	msg := "Validation failed"
	if len(fields) == 1 {
		msg = fmt.Sprintf("Validation failed: %s", fields[0].Message)
	}
	return &APIError{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg, Fields: fields}
}

// Field is shorthand for a single-field validation error.
func Field(field, message string) *APIError {
	return Validation(FieldError{Field: field, Message: message})
}

// Respond writes err to the client. Unknown errors are logged and hidden
// behind a generic 500.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		body := gin.H{"error": apiErr.Message}
		if len(apiErr.Fields) > 0 {
			body["errors"] = apiErr.Fields
		}
		c.AbortWithStatusJSON(apiErr.Status, body)
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("request_id", c.GetString("request_id")),
		slog.Any("error", err),
	)
	c.AbortWithStatusJSON(ErrInternal.Status, gin.H{"error": ErrInternal.Message})
}
