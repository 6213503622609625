package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/recurring-bookings/internal/persistence"
)

var scheduleCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*persistence.RecurringSchedule)

// NewScheduleFixture returns a deterministic weekly schedule with optional
// overrides. Each call produces a distinct id and customer.
func NewScheduleFixture(opts ...ScheduleOption) persistence.RecurringSchedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	day := 2
	created := referenceTime.Add(time.Duration(idx) * time.Minute)

	schedule := persistence.RecurringSchedule{
		ID:            fmt.Sprintf("sched-%03d", idx),
		CustomerID:    fmt.Sprintf("cust-%03d", idx),
		ServiceType:   "standard",
		Bedrooms:      2,
		Bathrooms:     1,
		AddressLine1:  "12 Protea Road",
		AddressSuburb: "Claremont",
		AddressCity:   "Cape Town",
		Frequency:     "weekly",
		DayOfWeek:     &day,
		PreferredTime: "08:00",
		StartDate:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// WithCustomer overrides the customer id.
func WithCustomer(customerID string) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.CustomerID = customerID
	}
}

// WithFrequency sets the cadence and its selector in one step. The selector
// is interpreted per frequency: weekday number for weekly and bi-weekly,
// day of month for monthly, weekday bitmask for the custom cadences.
func WithFrequency(frequency string, selector int) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.Frequency = frequency
		s.DayOfWeek = nil
		s.DayOfMonth = nil
		s.DaysOfWeek = nil
		switch frequency {
		case "weekly", "bi-weekly":
			day := selector
			s.DayOfWeek = &day
		case "monthly":
			day := selector
			s.DayOfMonth = &day
		case "custom-weekly", "custom-bi-weekly":
			mask := uint8(selector)
			s.DaysOfWeek = &mask
		}
	}
}

// WithStartDate overrides the schedule start date.
func WithStartDate(start time.Time) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.StartDate = start
	}
}

// WithEndDate sets the schedule end date.
func WithEndDate(end time.Time) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.EndDate = &end
	}
}

// Inactive marks the schedule as inactive.
func Inactive() ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.IsActive = false
	}
}

// WithWatermark sets the last generated month.
func WithWatermark(month string) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.LastGeneratedMonth = &month
	}
}

// WithExtras sets the extras map.
func WithExtras(extras map[string]int) ScheduleOption {
	return func(s *persistence.RecurringSchedule) {
		s.Extras = extras
	}
}
