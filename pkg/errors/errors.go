package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Directory errors surfaced to the people using the site
	ErrorTypeConnectivity ErrorType = "CONNECTIVITY"
	ErrorTypeFetch        ErrorType = "FETCH"
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeMutation     ErrorType = "MUTATION"
	ErrorTypeImportFormat ErrorType = "IMPORT_FORMAT"

	// Request errors
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"

	// Application errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// Infrastructure errors
	ErrorTypeStore    ErrorType = "STORE"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// User-facing messages kept identical across the HTTP API and the terminal UI.
const (
	MessageConnectivity  = "Unable to connect to database. Please check your Supabase configuration."
	MessageRequired      = "Please fill in all required fields (Name, Location, Country, Branch, and Generation)"
	MessageImportFormat  = "Invalid file format. Please upload a valid JSON file."
	MessageImportRead    = "Error reading file. Please check the file format."
	MessageImportSuccess = "Family data imported successfully!"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// FieldErrors returns the per-field messages attached to a validation error.
func (e *AppError) FieldErrors() map[string]string {
	out := map[string]string{}
	if e.Details == nil {
		return out
	}
	switch fields := e.Details["fields"].(type) {
	case map[string]string:
		for k, v := range fields {
			out[k] = v
		}
	case map[string]interface{}:
		for k, v := range fields {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

func newError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewStoreError reports a failed round trip to the record store. The message
// is the store's own and is kept verbatim.
func NewStoreError(operation, message string, cause error) *AppError {
	e := newError(ErrorTypeStore, http.StatusBadGateway, message)
	e.Code = operation
	e.Cause = cause
	return e
}

// NewConnectivityError is returned when the probe to the store fails.
func NewConnectivityError(cause error) *AppError {
	e := newError(ErrorTypeConnectivity, http.StatusServiceUnavailable, MessageConnectivity)
	e.Cause = cause
	return e
}

// NewFetchError is returned when fetching the directory fails after a
// successful probe. The store's message is surfaced as is.
func NewFetchError(cause error) *AppError {
	e := newError(ErrorTypeFetch, http.StatusBadGateway, StoreMessage(cause))
	e.Cause = cause
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewFieldValidationError creates a validation error carrying per-field messages.
func NewFieldValidationError(message string, fields map[string]string) *AppError {
	e := newError(ErrorTypeValidation, http.StatusBadRequest, message)
	e.Details = map[string]interface{}{"fields": fields}
	return e
}

// NewMutationError wraps a store failure during insert, update or delete.
func NewMutationError(action string, cause error) *AppError {
	msg := fmt.Sprintf("Failed to %s family member: %s", action, StoreMessage(cause))
	e := newError(ErrorTypeMutation, http.StatusBadGateway, msg)
	e.Code = action
	e.Cause = cause
	return e
}

// NewImportFormatError reports an upload that is not a JSON array.
func NewImportFormatError(cause error) *AppError {
	e := newError(ErrorTypeImportFormat, http.StatusBadRequest, MessageImportFormat)
	e.Cause = cause
	return e
}

// NewImportReadError reports an upload that could not be read or is not JSON.
func NewImportReadError(cause error) *AppError {
	e := newError(ErrorTypeImportFormat, http.StatusBadRequest, MessageImportRead)
	e.Cause = cause
	return e
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newError(ErrorTypeForbidden, http.StatusForbidden, message)
}

// NewRateLimitError creates a too-many-requests error
func NewRateLimitError(message string) *AppError {
	return newError(ErrorTypeRateLimited, http.StatusTooManyRequests, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) *AppError {
	return newError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message)
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	e := newError(ErrorTypeExternal, http.StatusBadGateway, fmt.Sprintf("external service '%s' error", service))
	e.Cause = err
	return e
}

// StoreMessage extracts the message a person should see for a store failure.
func StoreMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsStore checks if an error came from the record store
func IsStore(err error) bool {
	return IsType(err, ErrorTypeStore)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
