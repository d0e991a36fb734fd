package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/repository"
)

// fakeLedger mimics the Postgres repository's contract: one mutex per
// slot around the re-read plus insert, exactly the serialization the
// advisory lock provides. It lets the end-to-end admission scenarios
// run concurrently without a database.
type fakeLedger struct {
	mu       sync.Mutex
	slots    map[string]*sync.Mutex
	bookings []*domain.Booking
	nextID   int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{slots: make(map[string]*sync.Mutex)}
}

func (l *fakeLedger) slotMutex(activityID int64, day time.Time) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := fmt.Sprintf("%d:%s", activityID, day.Format(domain.DateFormat))
	if l.slots[key] == nil {
		l.slots[key] = &sync.Mutex{}
	}
	return l.slots[key]
}

func (l *fakeLedger) slotBookings(activityID int64, day time.Time) []domain.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Booking
	for _, b := range l.bookings {
		if b.ActivityID == activityID && b.BookingDate.Equal(day) && b.CountsAgainstCapacity() {
			out = append(out, *b)
		}
	}
	return out
}

func (l *fakeLedger) AdmitBooking(ctx context.Context, booking *domain.Booking, capacity int) (int, error) {
	slot := l.slotMutex(booking.ActivityID, booking.BookingDate)
	slot.Lock()
	defer slot.Unlock()

	remaining := domain.Remaining(capacity, l.slotBookings(booking.ActivityID, booking.BookingDate))
	if booking.GroupSize > remaining {
		return remaining, repository.ErrCapacityExceeded
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	booking.ID = l.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	l.bookings = append(l.bookings, booking)
	return remaining, nil
}

func (l *fakeLedger) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (l *fakeLedger) UpdateStatus(ctx context.Context, reference string, from, to domain.BookingStatus) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.Reference == reference && b.Status == from {
			b.Status = to
			b.UpdatedAt = time.Now()
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (l *fakeLedger) UpdatePaymentStatus(ctx context.Context, reference string, from, to domain.PaymentStatus) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.Reference == reference && b.PaymentStatus == from {
			b.PaymentStatus = to
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (l *fakeLedger) CompleteConfirmedBefore(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var completed []domain.Booking
	for _, b := range l.bookings {
		if b.Status == domain.BookingStatusConfirmed && b.BookingDate.Before(day) {
			b.Status = domain.BookingStatusCompleted
			completed = append(completed, *b)
		}
	}
	return completed, nil
}

var _ Ledger = (*fakeLedger)(nil)

type fixedCatalog struct {
	activity *domain.Activity
}

func (c *fixedCatalog) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	if c.activity == nil || c.activity.ID != id {
		return nil, repository.ErrNotFound
	}
	return c.activity, nil
}

func newScenarioService(ledger *fakeLedger) *BookingService {
	return NewBookingService(ledger, &fixedCatalog{activity: testActivity()}, nil, "", 20, WithNow(fixedNow))
}

// Two concurrent requests for 5 of 8 seats on the same day: exactly one
// is admitted, the loser is told 3 seats remain. A request for the
// remaining 3 then fills the day, one more guest is turned away, and
// cancelling a 5-seat booking frees the seats for a new group of 5.
func TestAdmission_ContendedSlotScenario(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)
	ctx := context.Background()

	input := testInput()
	input.GroupSize = 5

	results := make(chan error, 2)
	references := make(chan string, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := service.Admit(ctx, input)
			results <- err
			if err == nil {
				references <- b.Reference
			}
		}()
	}
	wg.Wait()
	close(results)
	close(references)

	var admitted int
	var rejections []*CapacityError
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		rejections = append(rejections, capErr)
	}

	require.Equal(t, 1, admitted)
	require.Len(t, rejections, 1)
	assert.Equal(t, 3, rejections[0].SlotsRemaining)
	assert.Equal(t, 5, rejections[0].RequestedSize)

	// Top up the day with the 3 remaining seats.
	input.GroupSize = 3
	_, err := service.Admit(ctx, input)
	require.NoError(t, err)

	// The day is full: even a single guest is rejected.
	input.GroupSize = 1
	_, err = service.Admit(ctx, input)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 0, capErr.SlotsRemaining)
	assert.Equal(t, 1, capErr.RequestedSize)

	// Cancelling the 5-seat booking frees its seats.
	winner := <-references
	_, err = service.UpdateStatus(ctx, winner, domain.BookingStatusCancelled)
	require.NoError(t, err)

	input.GroupSize = 5
	_, err = service.Admit(ctx, input)
	assert.NoError(t, err)
}

// Whatever the interleaving, admitted group sizes never sum past the
// capacity, and every loser gets a capacity error rather than a silent
// failure.
func TestAdmission_CapacityInvariantUnderStorm(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(groupSize int) {
			defer wg.Done()
			input := testInput()
			input.GroupSize = groupSize
			_, err := service.Admit(ctx, input)
			errs <- err
		}(1 + i%3)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			var capErr *CapacityError
			assert.ErrorAs(t, err, &capErr)
		}
	}

	day := domain.BookingDay(testInput().BookingDate)
	booked := domain.BookedSeats(ledger.slotBookings(4, day))
	assert.LessOrEqual(t, booked, 8)
	assert.Positive(t, booked)
}

// Admissions for different days share nothing and all succeed.
func TestAdmission_DistinctSlotsDoNotContend(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)
	ctx := context.Background()

	const days = 10
	var wg sync.WaitGroup
	errs := make(chan error, days)
	for i := 0; i < days; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			input := testInput()
			input.BookingDate = input.BookingDate.AddDate(0, 0, offset)
			input.GroupSize = 8
			_, err := service.Admit(ctx, input)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

// A lone request that fits is never rejected.
func TestAdmission_NoFalseRejection(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)

	input := testInput()
	input.GroupSize = 8

	result, err := service.Admit(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 8, result.GroupSize)
}

// A confirm that validated against a pending read must not land after
// the booking was cancelled and its seats resold: the conditional write
// no longer matches, the booking stays cancelled, and the slot's seat
// sum stays within capacity.
func TestAdmission_StaleConfirmCannotResurrectCancelledBooking(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)
	ctx := context.Background()

	input := testInput()
	input.GroupSize = 8
	full, err := service.Admit(ctx, input)
	require.NoError(t, err)

	// The cancel commits while a confirm is still holding a pending
	// snapshot of the booking.
	_, err = service.UpdateStatus(ctx, full.Reference, domain.BookingStatusCancelled)
	require.NoError(t, err)

	input.GroupSize = 5
	_, err = service.Admit(ctx, input)
	require.NoError(t, err)

	// The stalled confirm write now lands, still expecting pending.
	_, err = ledger.UpdateStatus(ctx, full.Reference, domain.BookingStatusPending, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stored, err := ledger.GetByReference(ctx, full.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)

	day := domain.BookingDay(testInput().BookingDate)
	assert.LessOrEqual(t, domain.BookedSeats(ledger.slotBookings(4, day)), 8)
}

func TestAdmission_CommittedWriteVisibleToRangeRead(t *testing.T) {
	ledger := newFakeLedger()
	service := newScenarioService(ledger)
	ctx := context.Background()

	result, err := service.Admit(ctx, testInput())
	require.NoError(t, err)

	// The admission returned, so the slot read must already see it.
	day := domain.BookingDay(testInput().BookingDate)
	slot := ledger.slotBookings(4, day)
	require.Len(t, slot, 1)
	assert.Equal(t, result.Reference, slot[0].Reference)
	assert.False(t, errors.Is(err, repository.ErrCapacityExceeded))
}
