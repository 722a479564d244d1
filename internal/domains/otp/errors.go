package otp

import "errors"

// Repository-level errors
var (
	ErrOtpNotFound = errors.New("no verification code found for this email")
)

// Service-level (Business logic) errors
var (
	ErrOtpExpired         = errors.New("verification code has expired")
	ErrOtpMismatch        = errors.New("verification code does not match")
	ErrOtpAlreadyVerified = errors.New("email is already verified")
)
