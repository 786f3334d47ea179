// Package common defines shared constants and sentinel errors used across
// gophusers layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorUserExists = errors.New("user already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrorUnsupported      = errors.New("operation not supported")
	ErrorInvalidArgument  = errors.New("invalid argument")

	// Validation errors (password policy, malformed user record).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
