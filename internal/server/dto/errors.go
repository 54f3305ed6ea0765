// Package dto defines the API request/response types and structured errors.
//
// Request types carry path/query/json struct tags for parameter binding and
// implement Validatable. Error handling follows a structured pattern:
// ErrorCode classifies failures machine-readably, APIError carries the HTTP
// status, and constructor functions build the common cases.
package dto

import (
	"fmt"
	"maps"
	"net/http"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrorCodeValidationFailed is returned when input data fails validation.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeNotFound is returned when a resource is not found.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrorCodeFileNotFound is returned when a path does not resolve in the tree.
	ErrorCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	// ErrorCodeNoTree is returned when no codebase has been loaded yet.
	ErrorCodeNoTree ErrorCode = "NO_TREE"
	// ErrorCodeBadRepoURL is returned when a repository URL does not parse.
	ErrorCodeBadRepoURL ErrorCode = "BAD_REPO_URL"
	// ErrorCodeUpstream is returned when a remote fetch fails.
	ErrorCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrorCodeFileTooLarge is returned when content exceeds the fetch ceiling.
	ErrorCodeFileTooLarge ErrorCode = "FILE_TOO_LARGE"
	// ErrorCodePayloadTooLarge is returned when a request body exceeds the limit.
	ErrorCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrorCodeRateLimited is returned when a rate limit is exceeded.
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrorCodeUnauthorized is returned when authentication is missing or invalid.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeInternal is returned when an unexpected server error occurs.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Validatable is implemented by every request type.
type Validatable interface {
	Validate() error
}

// ErrorDetails defines the structured error information in a response.
type ErrorDetails struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error   ErrorDetails   `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
}

// APIError is a concrete error type with status code and optional details.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	details    map[string]any
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
		details:    make(map[string]any),
	}
}

// WithDetails adds details to the error.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	maps.Copy(e.details, details)
	return e
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *APIError) Details() map[string]any {
	return e.details
}

// Unwrap returns the wrapped error if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, message)
}

// FileNotFound creates a 404 for a path that does not resolve in the tree.
func FileNotFound(path string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrorCodeFileNotFound, "no file at "+path)
}

// NoTree creates a 409 for requests made before any codebase is loaded.
func NoTree() *APIError {
	return NewAPIError(http.StatusConflict, ErrorCodeNoTree, "no codebase loaded")
}

// BadRepoURL creates a 400 for a repository URL that does not parse.
func BadRepoURL(err error) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeBadRepoURL, "invalid repository URL").Wrap(err)
}

// Upstream creates a 502 for a failed remote fetch. These are retryable.
func Upstream(operation string, err error) *APIError {
	return NewAPIError(http.StatusBadGateway, ErrorCodeUpstream, operation).Wrap(err)
}

// FileTooLarge creates a 413 for content over the fetch ceiling.
func FileTooLarge(err error) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodeFileTooLarge, "file too large").Wrap(err)
}

// PayloadTooLarge creates a 413 for an oversized request body.
func PayloadTooLarge(limit int64) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, "request body too large").
		WithDetail("limitBytes", limit)
}

// RateLimitExceeded creates a 429 with a retry hint.
func RateLimitExceeded(retryAfterSeconds int) *APIError {
	return NewAPIError(http.StatusTooManyRequests, ErrorCodeRateLimited, "rate limit exceeded").
		WithDetail("retryAfterSeconds", retryAfterSeconds)
}

// Unauthorized returns a 401 Unauthorized error.
func Unauthorized() *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrorCodeUnauthorized, "Unauthorized")
}

// Internal returns a 500 Internal Server Error.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrorCodeInternal, message)
}
