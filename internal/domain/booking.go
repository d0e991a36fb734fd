package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid      PaymentStatus = "unpaid"
	PaymentStatusDepositPaid PaymentStatus = "deposit_paid"
	PaymentStatusFullyPaid   PaymentStatus = "fully_paid"
	PaymentStatusRefunded    PaymentStatus = "refunded"
)

// DateFormat is the wire format for booking dates.
const DateFormat = "2006-01-02"

type Booking struct {
	ID              int64
	Reference       string
	ActivityID      int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	SpecialRequests *string
	BookingDate     time.Time // UTC midnight
	GroupSize       int
	Currency        Currency
	TotalCents      int64
	DepositCents    int64
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountsAgainstCapacity reports whether the booking's seats are still held.
// Cancelled bookings free their seats; every other status keeps them.
func (b *Booking) CountsAgainstCapacity() bool {
	return b.Status != BookingStatusCancelled
}

var statusTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCancelled: nil,
	BookingStatusCompleted: nil,
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusUnpaid:      {PaymentStatusDepositPaid, PaymentStatusFullyPaid, PaymentStatusRefunded},
	PaymentStatusDepositPaid: {PaymentStatusFullyPaid, PaymentStatusRefunded},
	PaymentStatusFullyPaid:   {PaymentStatusRefunded},
	PaymentStatusRefunded:    nil,
}

// CanTransitionTo reports whether the booking status machine allows
// moving from the current status to next. Cancelled and completed are
// terminal, including for admins.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, s := range statusTransitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

func (b *Booking) CanPaymentTransitionTo(next PaymentStatus) bool {
	for _, s := range paymentTransitions[b.PaymentStatus] {
		if s == next {
			return true
		}
	}
	return false
}

func ValidBookingStatus(s BookingStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

func ValidPaymentStatus(s PaymentStatus) bool {
	_, ok := paymentTransitions[s]
	return ok
}

// BookingDay normalizes a timestamp to its calendar day boundary in UTC.
// Time-of-day is ignored everywhere capacity is pooled.
func BookingDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
