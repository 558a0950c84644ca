package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation. It is always raised before any mutation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested meeting, user or code does
	// not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyJoined is returned when a user attempts to enroll in a
	// meeting they already belong to.
	ErrAlreadyJoined = errors.New("application: already joined")
	// ErrInvalidToken is returned when an access token cannot be resolved to
	// an identity.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrTokenExpired is returned when an access token is past its expiry.
	ErrTokenExpired = errors.New("application: token expired")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Inputs failing validation are rejected before any
// computation or write.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
