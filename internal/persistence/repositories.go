package persistence

import (
	"context"
	"time"
)

// ScheduleRepository stores recurring schedule templates.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule RecurringSchedule) error
	GetSchedule(ctx context.Context, id string) (RecurringSchedule, error)
	ListSchedules(ctx context.Context) ([]RecurringSchedule, error)
	ListActiveSchedules(ctx context.Context) ([]RecurringSchedule, error)
	// SetLastGeneratedMonth advances the schedule's generation watermark
	// ("YYYY-MM") and refreshes its updated timestamp.
	SetLastGeneratedMonth(ctx context.Context, id, month string, updatedAt time.Time) error
}

// BookingRepository stores generated bookings.
type BookingRepository interface {
	// CreateBooking inserts a booking. A second active booking for the same
	// customer and date fails with ErrDuplicate.
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ExistingBookingDates returns, out of the candidate dates, those on
	// which the customer already holds a non-cancelled booking.
	ExistingBookingDates(ctx context.Context, customerID string, dates []time.Time) ([]time.Time, error)
}
