// Package common defines shared constants and sentinel errors used across
// taskkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// ErrorInvalidInput marks requests that fail validation before any
	// storage is touched.
	ErrorInvalidInput = errors.New("invalid input")

	// Credential errors.
	ErrAuthenticationFailed = errors.New("incorrect username or password")

	// Auth errors (malformed, wrong-type, badly-signed or expired token).
	ErrInvalidToken = errors.New("invalid token")

	// Refresh token lifecycle errors: absent, already revoked or expired in store.
	ErrTokenNotFound = errors.New("refresh token not found")
)
