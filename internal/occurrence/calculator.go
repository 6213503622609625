package occurrence

import (
	"sort"
	"time"
)

// Frequency enumerates the supported recurrence cadences.
type Frequency string

const (
	// FrequencyWeekly produces one occurrence per week on DayOfWeek.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiWeekly produces an occurrence every other week on
	// DayOfWeek, anchored to the schedule start date.
	FrequencyBiWeekly Frequency = "bi-weekly"
	// FrequencyMonthly produces one occurrence per month on DayOfMonth.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyCustomWeekly produces weekly occurrences on each weekday in
	// the Weekdays set.
	FrequencyCustomWeekly Frequency = "custom-weekly"
	// FrequencyCustomBiWeekly produces bi-weekly occurrences on each
	// weekday in the Weekdays set, all sharing the start date anchor.
	FrequencyCustomBiWeekly Frequency = "custom-bi-weekly"
)

// Valid reports whether the frequency is one of the supported cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyCustomWeekly, FrequencyCustomBiWeekly:
		return true
	}
	return false
}

// UsesDayOfWeek reports whether the cadence reads the single-day selector.
func (f Frequency) UsesDayOfWeek() bool {
	return f == FrequencyWeekly || f == FrequencyBiWeekly
}

// UsesDaysOfWeek reports whether the cadence reads the weekday set.
func (f Frequency) UsesDaysOfWeek() bool {
	return f == FrequencyCustomWeekly || f == FrequencyCustomBiWeekly
}

// UsesDayOfMonth reports whether the cadence reads the day-of-month selector.
func (f Frequency) UsesDayOfMonth() bool {
	return f == FrequencyMonthly
}

// ClampPolicy decides what a monthly rule does when the target month is
// shorter than the requested day.
type ClampPolicy int

const (
	// ClampToLastDay moves the occurrence to the month's final day.
	ClampToLastDay ClampPolicy = iota
	// SkipMissingDay produces no occurrence for that month.
	SkipMissingDay
)

// Rule is the cadence portion of a recurring schedule, the only input the
// calculator needs. Exactly one of DayOfWeek, DayOfMonth and Weekdays is
// meaningful, selected by Frequency.
type Rule struct {
	Frequency  Frequency
	DayOfWeek  time.Weekday
	DayOfMonth int
	Weekdays   WeekdaySet
	StartDate  time.Time
	EndDate    *time.Time
}

// Calculator expands recurrence rules into concrete calendar dates. It is
// pure: no clock, no I/O, deterministic for a given rule and month.
type Calculator struct {
	clamp ClampPolicy
}

// NewCalculator constructs a calculator with the given monthly clamp policy.
func NewCalculator(policy ClampPolicy) *Calculator {
	return &Calculator{clamp: policy}
}

// Occurrences returns every date in the target month the rule should
// produce a booking for, sorted ascending and deduplicated. All returned
// dates are midnight UTC, on or after the rule's start date and, when an
// end date is set, on or before it.
func (c *Calculator) Occurrences(rule Rule, month Month) []time.Time {
	var dates []time.Time

	switch rule.Frequency {
	case FrequencyWeekly:
		dates = weeklyDates(rule, month, rule.DayOfWeek)
	case FrequencyBiWeekly:
		dates = biWeeklyDates(rule, month, rule.DayOfWeek)
	case FrequencyMonthly:
		dates = c.monthlyDates(rule, month)
	case FrequencyCustomWeekly:
		for _, day := range rule.Weekdays.Weekdays() {
			dates = append(dates, weeklyDates(rule, month, day)...)
		}
	case FrequencyCustomBiWeekly:
		for _, day := range rule.Weekdays.Weekdays() {
			dates = append(dates, biWeeklyDates(rule, month, day)...)
		}
	}

	return sortedUnique(dates)
}

// weeklyDates collects every date in the month whose weekday matches,
// intersected with the rule's validity window.
func weeklyDates(rule Rule, month Month, day time.Weekday) []time.Time {
	var dates []time.Time
	last := month.Last()
	for current := month.First(); !current.After(last); current = current.AddDate(0, 0, 1) {
		if current.Weekday() != day {
			continue
		}
		if !withinWindow(rule, current) {
			continue
		}
		dates = append(dates, current)
	}
	return dates
}

// biWeeklyDates anchors the fortnight parity to the first matching weekday
// on or after the rule's start date, so edits to the start date
// deterministically shift which weeks are on.
func biWeeklyDates(rule Rule, month Month, day time.Weekday) []time.Time {
	anchor := firstOnOrAfter(midnightUTC(rule.StartDate), day)

	var dates []time.Time
	last := month.Last()
	for current := anchor; !current.After(last); current = current.AddDate(0, 0, 14) {
		if !month.Contains(current) {
			continue
		}
		if !withinWindow(rule, current) {
			continue
		}
		dates = append(dates, current)
	}
	return dates
}

// monthlyDates produces the single occurrence for the month, applying the
// clamp policy when the requested day does not exist.
func (c *Calculator) monthlyDates(rule Rule, month Month) []time.Time {
	day := rule.DayOfMonth
	if day > month.Days() {
		if c.clamp == SkipMissingDay {
			return nil
		}
		day = month.Days()
	}
	if day < 1 {
		return nil
	}

	date := time.Date(month.Year, month.Month, day, 0, 0, 0, 0, time.UTC)
	if !withinWindow(rule, date) {
		return nil
	}
	return []time.Time{date}
}

// withinWindow reports whether the date falls inside [StartDate, EndDate].
func withinWindow(rule Rule, date time.Time) bool {
	if date.Before(midnightUTC(rule.StartDate)) {
		return false
	}
	if rule.EndDate != nil && date.After(midnightUTC(*rule.EndDate)) {
		return false
	}
	return true
}

// firstOnOrAfter walks forward from the given date to the first instance of
// the requested weekday.
func firstOnOrAfter(date time.Time, day time.Weekday) time.Time {
	for date.Weekday() != day {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortedUnique(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}

	seen := make(map[time.Time]struct{}, len(dates))
	unique := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		unique = append(unique, date)
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return unique
}
