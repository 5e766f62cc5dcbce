package home

import "errors"

// ErrValidation is matched by every validation failure in this package.
//
//	if errors.Is(err, home.ErrValidation) {
//	    // Reject the input (HTTP 400)
//	}
//
// The more specific errors below can be matched the same way.
var ErrValidation = errors.New("validation failed")

// validationError is a validation sentinel that also matches ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

// Validation errors by field.
var (
	ErrInvalidKey        error = &validationError{"invalid key"}
	ErrInvalidName       error = &validationError{"invalid name"}
	ErrInvalidEmail      error = &validationError{"invalid email"}
	ErrInvalidPrivilege  error = &validationError{"invalid privilege"}
	ErrInvalidLocation   error = &validationError{"invalid gps location"}
	ErrInvalidCount      error = &validationError{"invalid count"}
	ErrInvalidFloor      error = &validationError{"invalid floor"}
	ErrInvalidDeviceType error = &validationError{"invalid device type"}
)
