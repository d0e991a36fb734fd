package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed or out-of-range requests.
	ErrInvalidInput = errors.New("booking: invalid input")

	// ErrActivityNotFound is returned when the activity is missing or inactive.
	ErrActivityNotFound = errors.New("booking: activity not found")

	// ErrUnsupportedCurrency is returned when the activity has no price
	// for the requested currency.
	ErrUnsupportedCurrency = errors.New("booking: unsupported currency")

	// ErrBookingNotFound is returned when no booking matches the reference.
	ErrBookingNotFound = errors.New("booking: booking not found")

	// ErrInvalidTransition is returned when the status machine forbids
	// the requested transition.
	ErrInvalidTransition = errors.New("booking: invalid status transition")
)

// CapacityError reports that a request did not fit into the slot's
// remaining capacity. SlotsRemaining lets callers offer a smaller group
// size or another date.
type CapacityError struct {
	SlotsRemaining int
	RequestedSize  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("booking: capacity exceeded: %d seats remaining, %d requested", e.SlotsRemaining, e.RequestedSize)
}
