package models

import "errors"

// Error taxonomy shared by services and handlers. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf("%w").
var (
	// ErrUnauthenticated means no caller identity was supplied.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidArgument means a required field is missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means a referenced learner, course, quiz or group is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the request is incompatible with current state,
	// e.g. re-completing an already completed course.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the caller lacks the role to perform the mutation.
	ErrForbidden = errors.New("forbidden")
	// ErrVersionConflict is returned by repositories when an optimistic
	// write lost the race; services retry the read-modify-write cycle.
	ErrVersionConflict = errors.New("version conflict")
)
