package generation

import "time"

// CreatedBooking identifies one booking produced by a generation run.
type CreatedBooking struct {
	BookingID string    `json:"booking_id"`
	Reference string    `json:"reference"`
	Date      time.Time `json:"date"`
}

// OccurrenceError records a date whose booking could not be created. A zero
// Date means the whole run failed before any date was attempted.
type OccurrenceError struct {
	Date    time.Time `json:"date,omitempty"`
	Message string    `json:"message"`
}

// Skip reasons reported when a run produced no bookings by design.
const (
	SkipInactive   = "inactive"
	SkipInvalid    = "validation_failed"
	SkipNoDates    = "no_occurrences"
	SkipRunFailure = "run_failed"
)

// Report summarizes one generation run for one schedule and month.
// Conflicts and per-date errors are outcomes, not failures: the run keeps
// going and reports everything it saw.
type Report struct {
	ScheduleID    string            `json:"schedule_id"`
	Month         string            `json:"month"`
	Created       []CreatedBooking  `json:"created"`
	Conflicts     []time.Time       `json:"conflicts,omitempty"`
	Errors        []OccurrenceError `json:"errors,omitempty"`
	SkippedReason string            `json:"skipped_reason,omitempty"`
	Violations    map[string]string `json:"violations,omitempty"`
}

// ScheduleSummary is the read-only listing view of a schedule, annotated
// with the month a due-generation run would target next.
type ScheduleSummary struct {
	ID                  string     `json:"id"`
	CustomerID          string     `json:"customer_id"`
	ServiceType         string     `json:"service_type"`
	Frequency           string     `json:"frequency"`
	PreferredTime       string     `json:"preferred_time"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	IsActive            bool       `json:"is_active"`
	LastGeneratedMonth  *string    `json:"last_generated_month,omitempty"`
	NextGenerationMonth string     `json:"next_generation_month"`
}
