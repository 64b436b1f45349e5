package registry

import "errors"

// Error kinds reported by the Record Store and the Enrollment Manager.
// Every operation wraps one of these; test with errors.Is.
var (
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrNotFound               = errors.New("not found")
	ErrCourseFull             = errors.New("course is full")
	ErrAlreadyEnrolled        = errors.New("already enrolled")
	ErrNotEnrolled            = errors.New("not enrolled")
	ErrInvalidRange           = errors.New("value out of range")
	ErrInvalidField           = errors.New("invalid field")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
