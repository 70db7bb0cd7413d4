package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, errors.NotReady("")) matches any NOT_READY error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// ResourceNotFound creates an error for a resource the configuration provider
// does not declare.
func ResourceNotFound(resourceName string) *AppError {
	return &AppError{
		Code: ErrCodeResourceNotFound, Message: fmt.Sprintf("Resource %s not found", resourceName),
		Retryable: false,
		Details:   map[string]any{"resource": resourceName},
	}
}

// NotReady creates an error for a deferred handle accessed before it finished
// initializing.
func NotReady(name string) *AppError {
	return &AppError{
		Code: ErrCodeNotReady, Message: fmt.Sprintf("%s not ready", name),
		Retryable: true,
		Details:   map[string]any{"name": name},
	}
}

// ConnectionFailed creates an error for a failed connection to a service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// AlreadyExists creates an error for a duplicate declaration or registration.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("%s already exists", resource),
		Retryable: false,
		Details:   map[string]any{"resource": resource},
	}
}

// InvalidInput creates an error for an invalid field value.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// Validation creates an error for failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates an error for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// Internal creates an error wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
