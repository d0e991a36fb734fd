package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zvrva/tourbooking/internal/domain"
	"github.com/zvrva/tourbooking/internal/repository"
)

var (
	ErrActivityNotFound = errors.New("availability: activity not found")
	ErrInvalidRange     = errors.New("availability: invalid date range")
)

type AvailabilityUseCase interface {
	Calendar(ctx context.Context, activityID int64, from, to time.Time) ([]domain.DayAvailability, error)
}

type Ledger interface {
	ListForRange(ctx context.Context, activityID int64, from, to time.Time) ([]domain.Booking, error)
}

type Catalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
}

type AvailabilityService struct {
	ledger  Ledger
	catalog Catalog
	maxDays int
}

func NewAvailabilityService(ledger Ledger, catalog Catalog, maxDays int) *AvailabilityService {
	return &AvailabilityService{ledger: ledger, catalog: catalog, maxDays: maxDays}
}

// Calendar returns remaining seats per day over the inclusive range.
// It reads the ledger without locking, so the result may lag concurrent
// admissions; the admission path re-validates under its slot lock and
// is the only authority. A committed write is visible to any Calendar
// call issued after the commit returned.
func (s *AvailabilityService) Calendar(ctx context.Context, activityID int64, from, to time.Time) ([]domain.DayAvailability, error) {
	from = domain.BookingDay(from)
	to = domain.BookingDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > s.maxDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds the %d day limit", ErrInvalidRange, days, s.maxDays)
	}

	activity, err := s.catalog.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if !activity.IsActive {
		return nil, ErrActivityNotFound
	}

	bookings, err := s.ledger.ListForRange(ctx, activityID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time][]domain.Booking)
	for _, b := range bookings {
		day := domain.BookingDay(b.BookingDate)
		byDay[day] = append(byDay[day], b)
	}

	calendar := make([]domain.DayAvailability, 0, days)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		calendar = append(calendar, domain.DayAvailability{
			Date:           day,
			AvailableSeats: domain.Remaining(activity.Capacity, byDay[day]),
			TotalCapacity:  activity.Capacity,
		})
	}
	return calendar, nil
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
