package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource resolution errors
const (
	// ErrCodeResourceNotFound indicates the configuration provider has no
	// declaration for the requested resource.
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ErrCodeAlreadyExists indicates a duplicate declaration or registration.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Lifecycle errors
const (
	// ErrCodeNotReady indicates a deferred handle was used before initialization completed.
	ErrCodeNotReady ErrorCode = "NOT_READY"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// Validation errors
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ErrCodeInternal indicates an unexpected internal error.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeNotReady:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
