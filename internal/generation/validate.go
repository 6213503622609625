package generation

import (
	"fmt"
	"time"

	"github.com/example/recurring-bookings/internal/occurrence"
	"github.com/example/recurring-bookings/internal/persistence"
)

// validateSchedule checks a schedule's recurrence configuration and collects
// every violation before returning.
func validateSchedule(schedule persistence.RecurringSchedule) *ValidationError {
	vErr := &ValidationError{}

	if schedule.CustomerID == "" {
		vErr.add("customer_id", "customer is required")
	}
	if schedule.ServiceType == "" {
		vErr.add("service_type", "service type is required")
	}

	frequency := occurrence.Frequency(schedule.Frequency)
	if !frequency.Valid() {
		vErr.add("frequency", fmt.Sprintf("unsupported frequency %q", schedule.Frequency))
	}

	if frequency.UsesDayOfWeek() {
		switch {
		case schedule.DayOfWeek == nil:
			vErr.add("day_of_week", "day of week is required for this frequency")
		case *schedule.DayOfWeek < 0 || *schedule.DayOfWeek > 6:
			vErr.add("day_of_week", "day of week must be between 0 (Sunday) and 6 (Saturday)")
		}
	}

	if frequency.UsesDayOfMonth() {
		switch {
		case schedule.DayOfMonth == nil:
			vErr.add("day_of_month", "day of month is required for this frequency")
		case *schedule.DayOfMonth < 1 || *schedule.DayOfMonth > 31:
			vErr.add("day_of_month", "day of month must be between 1 and 31")
		}
	}

	if frequency.UsesDaysOfWeek() {
		switch {
		case schedule.DaysOfWeek == nil:
			vErr.add("days_of_week", "at least one weekday is required for this frequency")
		case occurrence.WeekdaySetFromBits(*schedule.DaysOfWeek).IsEmpty():
			vErr.add("days_of_week", "at least one weekday is required for this frequency")
		}
	}

	if schedule.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	} else if schedule.EndDate != nil && schedule.EndDate.Before(schedule.StartDate) {
		vErr.add("end_date", "end date must not be before the start date")
	}

	if _, err := time.Parse("15:04", schedule.PreferredTime); err != nil {
		vErr.add("preferred_time", "preferred time must be in HH:MM format")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// ruleFromSchedule converts a validated schedule into a calculator rule.
func ruleFromSchedule(schedule persistence.RecurringSchedule) occurrence.Rule {
	rule := occurrence.Rule{
		Frequency: occurrence.Frequency(schedule.Frequency),
		StartDate: schedule.StartDate,
		EndDate:   schedule.EndDate,
	}
	if schedule.DayOfWeek != nil {
		rule.DayOfWeek = time.Weekday(*schedule.DayOfWeek)
	}
	if schedule.DayOfMonth != nil {
		rule.DayOfMonth = *schedule.DayOfMonth
	}
	if schedule.DaysOfWeek != nil {
		rule.Weekdays = occurrence.WeekdaySetFromBits(*schedule.DaysOfWeek)
	}
	return rule
}
