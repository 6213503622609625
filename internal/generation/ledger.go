package generation

import (
	"time"

	"github.com/example/recurring-bookings/internal/occurrence"
)

// NextGenerationMonth computes the month a due-generation run should target
// for a schedule, from its advisory watermark. A schedule that has never
// been generated, or whose watermark lags behind the current month, is due
// for the current month; one already generated for the current month or
// later is due for the month after its watermark.
//
// The watermark is advisory only. Actual duplicate prevention happens in
// the conflict check and the storage uniqueness constraint, so a stale or
// unparseable watermark merely re-targets a month that will generate
// nothing new.
func NextGenerationMonth(lastGenerated *string, now time.Time) occurrence.Month {
	current := occurrence.MonthOf(now)
	if lastGenerated == nil {
		return current
	}
	watermark, err := occurrence.ParseMonth(*lastGenerated)
	if err != nil {
		return current
	}
	if watermark.Before(current) {
		return current
	}
	return watermark.Next()
}
