package occurrence

import (
	"errors"
	"fmt"
	"time"
)

// Month identifies a calendar month in the service's local calendar.
//
// Generation is always invoked for an explicit month; no component derives
// the target month from the process clock.
type Month struct {
	Year  int
	Month time.Month
}

// ErrInvalidMonth indicates a month string or number outside the calendar.
var ErrInvalidMonth = errors.New("occurrence: invalid month")

// NewMonth constructs a Month, validating the month number.
func NewMonth(year, month int) (Month, error) {
	if year < 1 || month < 1 || month > 12 {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the month containing the provided instant.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses the wire format "YYYY-MM".
func ParseMonth(value string) (Month, error) {
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, value)
	}
	return Month{Year: parsed.Year(), Month: parsed.Month()}, nil
}

// String renders the month in the "YYYY-MM" watermark format.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns midnight UTC on the last day of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day()
}

// Contains reports whether the provided date falls inside the month.
func (m Month) Contains(date time.Time) bool {
	return date.Year() == m.Year && date.Month() == m.Month
}
