package account

import "errors"

// Repository-level errors
var (
	ErrProfileNotFound = errors.New("user not found")

	// Conflict
	ErrEmailAlreadyExists = errors.New("email already registered, please log in instead")
)

// Service-level (Business logic) errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrForbidden          = errors.New("forbidden: admin rights required")
)
