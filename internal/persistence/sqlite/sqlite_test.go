package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/recurring-bookings/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, Migrate(context.Background(), pool))
	return pool
}

func testSchedule(id string) persistence.RecurringSchedule {
	day := 2
	now := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC)
	return persistence.RecurringSchedule{
		ID:            id,
		CustomerID:    "cust-1",
		ServiceType:   "standard",
		Bedrooms:      2,
		Bathrooms:     1,
		Extras:        map[string]int{"laundry": 1},
		AddressLine1:  "12 Protea Road",
		AddressSuburb: "Claremont",
		AddressCity:   "Cape Town",
		Frequency:     "weekly",
		DayOfWeek:     &day,
		PreferredTime: "08:00",
		StartDate:     time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testBooking(id, reference, customerID string, date time.Time) persistence.Booking {
	now := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC)
	return persistence.Booking{
		ID:            id,
		Reference:     reference,
		CustomerID:    customerID,
		ServiceType:   "standard",
		Bedrooms:      2,
		Bathrooms:     1,
		AddressLine1:  "12 Protea Road",
		AddressSuburb: "Claremont",
		AddressCity:   "Cape Town",
		BookingDate:   date,
		BookingTime:   "08:00",
		Status:        "pending",
		Subtotal:      decimal.NewFromInt(320),
		ServiceFee:    decimal.NewFromInt(50),
		Discount:      decimal.NewFromInt(48),
		Total:         decimal.NewFromInt(322),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
