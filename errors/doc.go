// Package errors provides the structured error type used across the module.
// Every AppError carries a machine-readable code, a message, optional details
// and a retryable flag derived from the code.
package errors
