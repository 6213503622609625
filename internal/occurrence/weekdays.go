package occurrence

import (
	"sort"
	"strings"
	"time"
)

// WeekdaySet is a fixed-size set over the seven weekdays, packed into a
// bitmask so equality checks and persistence stay trivial. Bit 0 is Sunday,
// matching time.Weekday.
type WeekdaySet uint8

// weekdayMask covers the seven valid bits.
const weekdayMask WeekdaySet = 0x7F

// NewWeekdaySet builds a set from the provided weekdays. Values outside
// Sunday..Saturday are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			continue
		}
		set |= 1 << uint(day)
	}
	return set
}

// WeekdaySetFromBits restores a set from its persisted bitmask, discarding
// bits outside the weekday range.
func WeekdaySetFromBits(bits uint8) WeekdaySet {
	return WeekdaySet(bits) & weekdayMask
}

// Bits returns the raw bitmask for persistence.
func (s WeekdaySet) Bits() uint8 {
	return uint8(s & weekdayMask)
}

// Contains reports whether the set includes the given weekday.
func (s WeekdaySet) Contains(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return s&(1<<uint(day)) != 0
}

// IsEmpty reports whether no weekday is selected.
func (s WeekdaySet) IsEmpty() bool {
	return s&weekdayMask == 0
}

// Count returns the number of selected weekdays.
func (s WeekdaySet) Count() int {
	count := 0
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Contains(day) {
			count++
		}
	}
	return count
}

// Weekdays returns the selected weekdays in ascending order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, s.Count())
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Contains(day) {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// String renders the set for logs and error messages.
func (s WeekdaySet) String() string {
	if s.IsEmpty() {
		return "none"
	}
	names := make([]string, 0, s.Count())
	for _, day := range s.Weekdays() {
		names = append(names, day.String())
	}
	return strings.Join(names, ",")
}
