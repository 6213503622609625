package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/recurring-bookings/internal/persistence"
	"github.com/shopspring/decimal"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const bookingColumns = `id, reference, schedule_id, customer_id, cleaner_id,
	service_type, bedrooms, bathrooms, extras, notes,
	address_line1, address_suburb, address_city,
	booking_date, booking_time, status,
	subtotal, service_fee, discount, total, created_at, updated_at`

// CreateBooking inserts a booking. The partial unique index on
// (customer_id, booking_date) surfaces as persistence.ErrDuplicate.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.Reference == "" {
		return persistence.ErrConstraintViolation
	}

	extras, err := encodeExtras(booking.Extras)
	if err != nil {
		return err
	}

	query := `INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, query,
			booking.ID,
			booking.Reference,
			nullString(booking.ScheduleID),
			booking.CustomerID,
			nullString(booking.CleanerID),
			booking.ServiceType,
			booking.Bedrooms,
			booking.Bathrooms,
			extras,
			nullString(booking.Notes),
			booking.AddressLine1,
			booking.AddressSuburb,
			booking.AddressCity,
			booking.BookingDate.UTC().Format(dateLayout),
			booking.BookingTime,
			booking.Status,
			booking.Subtotal.String(),
			booking.ServiceFee.String(),
			booking.Discount.String(),
			booking.Total.String(),
			booking.CreatedAt.UTC().Format(time.RFC3339),
			booking.UpdatedAt.UTC().Format(time.RFC3339),
		)
		return err
	})
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	booking, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ExistingBookingDates returns the subset of dates on which the customer
// already holds a non-cancelled booking, sorted ascending.
func (r *BookingRepository) ExistingBookingDates(ctx context.Context, customerID string, dates []time.Time) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(dates))
	args := make([]any, 0, len(dates)+1)
	args = append(args, customerID)
	for i, date := range dates {
		placeholders[i] = "?"
		args = append(args, date.UTC().Format(dateLayout))
	}

	query := `SELECT DISTINCT booking_date FROM bookings
		WHERE customer_id = ? AND status != 'cancelled'
		AND booking_date IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY booking_date ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var existing []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, r.mapper.MapError(err)
		}
		date, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		existing = append(existing, date)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return existing, nil
}

func scanBooking(scan func(dest ...any) error) (persistence.Booking, error) {
	var (
		booking                               persistence.Booking
		scheduleID, cleanerID, notes          sql.NullString
		extrasRaw, bookingDateStr             string
		subtotal, serviceFee, discount, total string
		createdAt, updatedAt                  string
	)

	err := scan(
		&booking.ID,
		&booking.Reference,
		&scheduleID,
		&booking.CustomerID,
		&cleanerID,
		&booking.ServiceType,
		&booking.Bedrooms,
		&booking.Bathrooms,
		&extrasRaw,
		&notes,
		&booking.AddressLine1,
		&booking.AddressSuburb,
		&booking.AddressCity,
		&bookingDateStr,
		&booking.BookingTime,
		&booking.Status,
		&subtotal,
		&serviceFee,
		&discount,
		&total,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.ScheduleID = stringPtr(scheduleID)
	booking.CleanerID = stringPtr(cleanerID)
	booking.Notes = stringPtr(notes)

	if booking.Extras, err = decodeExtras(extrasRaw); err != nil {
		return persistence.Booking{}, err
	}
	if booking.BookingDate, err = parseDate(bookingDateStr); err != nil {
		return persistence.Booking{}, err
	}
	if booking.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse subtotal: %w", err)
	}
	if booking.ServiceFee, err = decimal.NewFromString(serviceFee); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse service_fee: %w", err)
	}
	if booking.Discount, err = decimal.NewFromString(discount); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse discount: %w", err)
	}
	if booking.Total, err = decimal.NewFromString(total); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse total: %w", err)
	}
	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return booking, nil
}
