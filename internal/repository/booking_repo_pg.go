package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/tourbooking/internal/domain"
)

type BookingRepository interface {
	// AdmitBooking atomically admits the booking against the activity's
	// per-day capacity. It returns the seats remaining before the insert;
	// on ErrCapacityExceeded nothing is written and the returned value is
	// the actual remainder the caller can offer instead.
	AdmitBooking(ctx context.Context, booking *domain.Booking, capacity int) (int, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	// UpdateStatus and UpdatePaymentStatus are compare-and-set writes:
	// the row is updated only while it still holds the expected current
	// value, so a transition validated against a stale read cannot land.
	// ErrNotFound is returned when no row matches reference+expected.
	UpdateStatus(ctx context.Context, reference string, from, to domain.BookingStatus) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, reference string, from, to domain.PaymentStatus) (*domain.Booking, error)
	ListForRange(ctx context.Context, activityID int64, from, to time.Time) ([]domain.Booking, error)
	CompleteConfirmedBefore(ctx context.Context, day time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, activity_id, customer_name, customer_email, customer_phone, special_requests, booking_date, group_size, currency, total_cents, deposit_cents, status, payment_status, created_at, updated_at`

// slotLockToken derives a 64-bit advisory lock key from the slot
// (activity, day). Two distinct slots hashing to the same token only
// serialize needlessly; correctness is carried by the slot-filtered
// re-read, never by the token.
func slotLockToken(activityID int64, day time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", activityID, day.Format(domain.DateFormat))
	return int64(h.Sum64())
}

func (r *PGBookingRepository) AdmitBooking(ctx context.Context, booking *domain.Booking, capacity int) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Transaction-scoped exclusive lock on the slot. Released by commit
	// or rollback, so there is no separate unlock step to leak.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, slotLockToken(booking.ActivityID, booking.BookingDate)); err != nil {
		return 0, err
	}

	// Second read is mandatory: only inside the lock does the remainder
	// become authoritative for this slot.
	existing, err := listForSlot(ctx, tx, booking.ActivityID, booking.BookingDate)
	if err != nil {
		return 0, err
	}
	remaining := domain.Remaining(capacity, existing)
	if booking.GroupSize > remaining {
		return remaining, ErrCapacityExceeded
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (reference, activity_id, customer_name, customer_email, customer_phone, special_requests, booking_date, group_size, currency, total_cents, deposit_cents, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.ActivityID, booking.CustomerName, booking.CustomerEmail, booking.CustomerPhone, booking.SpecialRequests,
		booking.BookingDate, booking.GroupSize, booking.Currency, booking.TotalCents, booking.DepositCents, booking.Status, booking.PaymentStatus).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return remaining, err
	}

	if err := tx.Commit(ctx); err != nil {
		return remaining, err
	}
	return remaining, nil
}

func listForSlot(ctx context.Context, tx pgx.Tx, activityID int64, day time.Time) ([]domain.Booking, error) {
	rows, err := tx.Query(ctx, `SELECT id, group_size, status FROM bookings WHERE activity_id=$1 AND booking_date=$2 AND status <> $3`, activityID, day, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.GroupSize, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference)
	return scanBooking(row)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, reference string, from, to domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE reference=$2 AND status=$3 RETURNING `+bookingColumns, to, reference, from)
	return scanBooking(row)
}

func (r *PGBookingRepository) UpdatePaymentStatus(ctx context.Context, reference string, from, to domain.PaymentStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now() WHERE reference=$2 AND payment_status=$3 RETURNING `+bookingColumns, to, reference, from)
	return scanBooking(row)
}

// ListForRange returns the non-cancelled bookings for an activity over
// an inclusive day range. Plain read, no locking: the availability
// calendar built from it is advisory only.
func (r *PGBookingRepository) ListForRange(ctx context.Context, activityID int64, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE activity_id=$1 AND booking_date BETWEEN $2 AND $3 AND status <> $4 ORDER BY booking_date`, activityID, from, to, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) CompleteConfirmedBefore(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE status=$2 AND booking_date < $3 RETURNING `+bookingColumns, domain.BookingStatusCompleted, domain.BookingStatusConfirmed, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completed []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		completed = append(completed, *b)
	}
	return completed, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Reference, &b.ActivityID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.SpecialRequests,
		&b.BookingDate, &b.GroupSize, &b.Currency, &b.TotalCents, &b.DepositCents, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
