package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/kafka"
	"github.com/zvrva/tourbooking/internal/repository"
)

type BookingUseCase interface {
	Admit(ctx context.Context, input AdmitInput) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, reference string, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus) (*domain.Booking, error)
	CompletePastBookings(ctx context.Context) ([]domain.Booking, error)
}

// Ledger is the durable store of bookings. AdmitBooking is its only
// insert path and carries the per-slot serialization.
type Ledger interface {
	AdmitBooking(ctx context.Context, booking *domain.Booking, capacity int) (int, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, reference string, from, to domain.BookingStatus) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, from, to domain.PaymentStatus) (*domain.Booking, error)
	CompleteConfirmedBefore(ctx context.Context, day time.Time) ([]domain.Booking, error)
}

// Catalog supplies activity facts, read-only from this service's view.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	ledger             Ledger
	catalog            Catalog
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	depositPercent     int
	now                func() time.Time
}

type AdmitInput struct {
	ActivityID      int64
	BookingDate     time.Time
	GroupSize       int
	Currency        domain.Currency
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	SpecialRequests *string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	ledger Ledger,
	catalog Catalog,
	producer Producer,
	bookingTopic string,
	depositPercent int,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		ledger:         ledger,
		catalog:        catalog,
		producer:       producer,
		bookingTopic:   bookingTopic,
		depositPercent: depositPercent,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Admit decides whether the request fits into its slot's remaining
// capacity and, if so, persists the booking. Price fields are always
// computed here from the catalog; nothing price-shaped is accepted from
// the caller.
func (s *BookingService) Admit(ctx context.Context, input AdmitInput) (*domain.Booking, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	day := domain.BookingDay(input.BookingDate)

	activity, err := s.catalog.GetByID(ctx, input.ActivityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if !activity.IsActive {
		return nil, ErrActivityNotFound
	}

	price, ok := activity.PriceFor(input.Currency)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, input.Currency)
	}

	// A group larger than the whole capacity can never fit, whatever the
	// ledger holds. Rejected before taking the slot lock.
	if input.GroupSize > activity.Capacity {
		return nil, &CapacityError{SlotsRemaining: activity.Capacity, RequestedSize: input.GroupSize}
	}

	totalCents := price * int64(input.GroupSize)
	booking := &domain.Booking{
		Reference:       uuid.NewString(),
		ActivityID:      activity.ID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		SpecialRequests: input.SpecialRequests,
		BookingDate:     day,
		GroupSize:       input.GroupSize,
		Currency:        input.Currency,
		TotalCents:      totalCents,
		DepositCents:    totalCents * int64(s.depositPercent) / 100,
		Status:          domain.BookingStatusPending,
		PaymentStatus:   domain.PaymentStatusUnpaid,
	}

	remaining, err := s.ledger.AdmitBooking(ctx, booking, activity.Capacity)
	if err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, &CapacityError{SlotsRemaining: remaining, RequestedSize: input.GroupSize}
		}
		return nil, err
	}

	// The booking is durable from here; notification is best-effort.
	s.publish(ctx, "booking_admitted", booking, activity.Name)
	return booking, nil
}

func (s *BookingService) validate(input AdmitInput) error {
	if input.ActivityID <= 0 {
		return fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}
	if input.GroupSize < 1 {
		return fmt.Errorf("%w: group size must be at least 1", ErrInvalidInput)
	}
	if !input.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidInput, input.Currency)
	}
	if input.CustomerName == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if input.CustomerEmail == "" {
		return fmt.Errorf("%w: customer email is required", ErrInvalidInput)
	}
	if input.BookingDate.IsZero() {
		return fmt.Errorf("%w: booking date is required", ErrInvalidInput)
	}
	if domain.BookingDay(input.BookingDate).Before(domain.BookingDay(s.now())) {
		return fmt.Errorf("%w: booking date is in the past", ErrInvalidInput)
	}
	return nil
}

func (s *BookingService) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := s.ledger.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatus drives the booking status machine. A transition into
// cancelled is an ordinary ledger update, so the freed seats are seen
// by the very next admission's re-read. The write carries the status
// the transition was validated against, so two racing updates cannot
// both land: the second one's expected status no longer matches and
// the ledger rejects it.
func (s *BookingService) UpdateStatus(ctx context.Context, reference string, status domain.BookingStatus) (*domain.Booking, error) {
	if !domain.ValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	current, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !current.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.ledger.UpdateStatus(ctx, reference, current.Status, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking is no longer %s", ErrInvalidTransition, current.Status)
		}
		return nil, err
	}
	s.publish(ctx, "booking_"+string(status), updated, "")
	return updated, nil
}

func (s *BookingService) UpdatePaymentStatus(ctx context.Context, reference string, status domain.PaymentStatus) (*domain.Booking, error) {
	if !domain.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	current, err := s.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if current.PaymentStatus == status {
		return current, nil
	}
	if !current.CanPaymentTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.PaymentStatus, status)
	}

	updated, err := s.ledger.UpdatePaymentStatus(ctx, reference, current.PaymentStatus, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: payment is no longer %s", ErrInvalidTransition, current.PaymentStatus)
		}
		return nil, err
	}
	return updated, nil
}

// CompletePastBookings flips confirmed bookings with past dates to
// completed. Invoked by the worker sweep.
func (s *BookingService) CompletePastBookings(ctx context.Context) ([]domain.Booking, error) {
	today := domain.BookingDay(s.now())
	completed, err := s.ledger.CompleteConfirmedBefore(ctx, today)
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publish(ctx, "booking_completed", &completed[i], "")
	}
	return completed, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, activityName string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		Reference:     booking.Reference,
		ActivityID:    booking.ActivityID,
		ActivityName:  activityName,
		BookingDate:   booking.BookingDate.Format(domain.DateFormat),
		GroupSize:     booking.GroupSize,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		Currency:      string(booking.Currency),
		TotalCents:    booking.TotalCents,
		DepositCents:  booking.DepositCents,
		Status:        string(booking.Status),
		OccurredAt:    s.now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.Reference, err)
	}
	if s.notificationsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
		log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.Reference, err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
