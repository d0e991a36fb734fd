package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrCapacityExceeded is returned by AdmitBooking when the re-read
	// inside the slot lock shows fewer remaining seats than requested.
	ErrCapacityExceeded = errors.New("repository: capacity exceeded")
)
