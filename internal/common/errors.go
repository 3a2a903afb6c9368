// Package common defines shared constants and sentinel errors used across
// the client and server layers of orgdrive. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// ErrAuthenticationRequired is returned when the caller carries no
	// resolvable identity.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAuthorizationDenied is returned when the identity is known but lacks
	// access to the organization or file.
	ErrAuthorizationDenied = errors.New("authorization denied")

	ErrRateLimited = errors.New("rate limit exceeded")

	// Validation errors.
	ErrValidation          = errors.New("validation error")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
