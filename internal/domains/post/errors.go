package post

import "errors"

// Repository-level errors
var (
	ErrPostNotFound = errors.New("post not found")
)

// Service-level (Business logic) errors
var (
	// ErrForbidden covers every failed authorization check. Whether the
	// actor was the wrong author or just not an admin is not exposed.
	ErrForbidden = errors.New("forbidden: not the author or an admin")
)
