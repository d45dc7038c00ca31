package records

import "errors"

var (
	// ErrEmailTaken is returned when an email is already registered to a
	// patient or a doctor.
	ErrEmailTaken = errors.New("records: email already registered")

	// ErrNotFound is returned when a record, or a record it references,
	// does not exist.
	ErrNotFound = errors.New("records: not found")
)
