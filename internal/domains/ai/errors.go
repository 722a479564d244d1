package ai

import "errors"

// Validation errors
var (
	ErrContentTooShort = errors.New("content must be at least 10 characters for suggestions")
)
