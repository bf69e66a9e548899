package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidationError is returned when client input fails a precondition
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError is returned when an operation references an absent identifier
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", singular(e.Collection))
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(collection, id string) *NotFoundError {
	return &NotFoundError{Collection: collection, ID: id}
}

// StoreError wraps any failure from the underlying document store.
// The message always carries the cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the given operation
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// Envelope is the uniform response body of the HTTP API
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondWithData sends a success envelope
func RespondWithData(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithError sends a failure envelope
func RespondWithError(c *gin.Context, statusCode int, message, cause string) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Message: message,
		Error:   cause,
	})
}

// StatusFor maps a service error onto an HTTP status code
func StatusFor(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError maps err to a status code and writes the envelope.
// fallback is used as the message for internal failures.
// The error is also recorded on the context for request logging.
func RespondWithServiceError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		InternalError(c, fallback, err)
		return
	}
	RespondWithError(c, status, err.Error(), "")
}

// Helper functions for common error responses

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, message, "")
}

// InternalError sends a 500 response carrying the cause
func InternalError(c *gin.Context, message string, cause error) {
	if message == "" {
		message = "Internal server error"
	}
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	RespondWithError(c, http.StatusInternalServerError, message, detail)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, message, "")
}

func singular(collection string) string {
	switch collection {
	case "projects":
		return "Project"
	case "tasks":
		return "Task"
	case "users", "taskManagement":
		return "User"
	case "":
		return "Resource"
	}
	return collection
}
