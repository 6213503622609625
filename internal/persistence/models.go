package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringSchedule is a customer's recurring cleaning template as stored.
// Exactly one of DayOfWeek, DayOfMonth and DaysOfWeek is set, depending on
// Frequency. DaysOfWeek is a seven-bit mask with bit 0 = Sunday.
type RecurringSchedule struct {
	ID                 string
	CustomerID         string
	ServiceType        string
	Bedrooms           int
	Bathrooms          int
	Extras             map[string]int
	Notes              *string
	AddressLine1       string
	AddressSuburb      string
	AddressCity        string
	CleanerID          *string
	Frequency          string
	DayOfWeek          *int
	DayOfMonth         *int
	DaysOfWeek         *uint8
	PreferredTime      string
	StartDate          time.Time
	EndDate            *time.Time
	IsActive           bool
	LastGeneratedMonth *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Booking is one concrete dated occurrence produced from a schedule, with
// the price breakdown snapshotted at generation time.
type Booking struct {
	ID            string
	Reference     string
	ScheduleID    *string
	CustomerID    string
	CleanerID     *string
	ServiceType   string
	Bedrooms      int
	Bathrooms     int
	Extras        map[string]int
	Notes         *string
	AddressLine1  string
	AddressSuburb string
	AddressCity   string
	BookingDate   time.Time
	BookingTime   string
	Status        string
	Subtotal      decimal.Decimal
	ServiceFee    decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
