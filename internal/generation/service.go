package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/recurring-bookings/internal/occurrence"
	"github.com/example/recurring-bookings/internal/persistence"
	"github.com/example/recurring-bookings/internal/pricing"
)

// ScheduleStore captures the schedule persistence interactions the
// generator needs.
type ScheduleStore interface {
	GetSchedule(ctx context.Context, id string) (persistence.RecurringSchedule, error)
	ListSchedules(ctx context.Context) ([]persistence.RecurringSchedule, error)
	ListActiveSchedules(ctx context.Context) ([]persistence.RecurringSchedule, error)
	SetLastGeneratedMonth(ctx context.Context, id, month string, updatedAt time.Time) error
}

// BookingStore captures the booking persistence interactions the generator
// needs.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	ExistingBookingDates(ctx context.Context, customerID string, dates []time.Time) ([]time.Time, error)
}

const defaultWorkers = 4

// Generator turns recurring schedules into concrete bookings for a target
// month. Runs for the same schedule are serialized with a per-schedule
// lock; bulk runs fan out over a bounded worker pool.
type Generator struct {
	schedules   ScheduleStore
	bookings    BookingStore
	quoter      pricing.Quoter
	calc        *occurrence.Calculator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	workers     int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGenerator wires dependencies for booking generation.
func NewGenerator(schedules ScheduleStore, bookings BookingStore, quoter pricing.Quoter, calc *occurrence.Calculator, idGenerator func() string, now func() time.Time, logger *slog.Logger, workers int) *Generator {
	if calc == nil {
		calc = occurrence.NewCalculator(occurrence.ClampToLastDay)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Generator{
		schedules:   schedules,
		bookings:    bookings,
		quoter:      quoter,
		calc:        calc,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
		workers:     workers,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing runs for one schedule.
func (g *Generator) lockFor(scheduleID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[scheduleID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[scheduleID] = lock
	}
	return lock
}

// Generate runs booking generation for one schedule and month. Inactive and
// invalid schedules produce a skipped report, not an error; only an unknown
// schedule or a failing schedule lookup is an error.
func (g *Generator) Generate(ctx context.Context, scheduleID string, month occurrence.Month) (Report, error) {
	if g == nil {
		return Report{}, fmt.Errorf("Generator is nil")
	}

	lock := g.lockFor(scheduleID)
	lock.Lock()
	defer lock.Unlock()

	schedule, err := g.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Report{}, mapRepoError(err)
	}

	return g.generate(ctx, schedule, month), nil
}

// generate produces the report for one schedule. The caller holds the
// schedule lock and has already loaded the record.
func (g *Generator) generate(ctx context.Context, schedule persistence.RecurringSchedule, month occurrence.Month) Report {
	logger := serviceLogger(ctx, g.logger, "generate",
		"schedule_id", schedule.ID, "month", month.String())

	report := Report{ScheduleID: schedule.ID, Month: month.String()}

	if !schedule.IsActive {
		report.SkippedReason = SkipInactive
		logger.Info("schedule inactive, skipping")
		return report
	}

	if vErr := validateSchedule(schedule); vErr != nil {
		report.SkippedReason = SkipInvalid
		report.Violations = vErr.FieldErrors
		logger.Info("schedule invalid, skipping", "violations", len(vErr.FieldErrors))
		return report
	}

	dates := g.calc.Occurrences(ruleFromSchedule(schedule), month)
	if len(dates) == 0 {
		report.SkippedReason = SkipNoDates
		g.advanceWatermark(ctx, logger, schedule, month)
		logger.Info("no occurrences in month")
		return report
	}

	snapshot, err := g.quoter.Quote(ctx, pricing.QuoteRequest{
		ServiceType: schedule.ServiceType,
		Bedrooms:    schedule.Bedrooms,
		Bathrooms:   schedule.Bathrooms,
		Extras:      schedule.Extras,
		Frequency:   schedule.Frequency,
	})
	if err != nil {
		report.SkippedReason = SkipRunFailure
		report.Errors = append(report.Errors, OccurrenceError{Message: fmt.Sprintf("price quote: %v", err)})
		logger.Error("price quote failed", "error", err)
		return report
	}

	existing, err := g.bookings.ExistingBookingDates(ctx, schedule.CustomerID, dates)
	if err != nil {
		report.SkippedReason = SkipRunFailure
		report.Errors = append(report.Errors, OccurrenceError{Message: fmt.Sprintf("conflict lookup: %v", err)})
		logger.Error("conflict lookup failed", "error", err)
		return report
	}
	taken := make(map[time.Time]struct{}, len(existing))
	for _, date := range existing {
		taken[date] = struct{}{}
	}

	for _, date := range dates {
		if _, ok := taken[date]; ok {
			report.Conflicts = append(report.Conflicts, date)
			continue
		}

		booking := g.buildBooking(schedule, date, snapshot)
		if err := g.bookings.CreateBooking(ctx, booking); err != nil {
			// A duplicate lost the race to another writer; that is a
			// conflict outcome, not a failure.
			if errors.Is(err, persistence.ErrDuplicate) {
				report.Conflicts = append(report.Conflicts, date)
				continue
			}
			report.Errors = append(report.Errors, OccurrenceError{Date: date, Message: err.Error()})
			logger.Error("booking insert failed", "date", date.Format("2006-01-02"), "error", err)
			continue
		}
		report.Created = append(report.Created, CreatedBooking{
			BookingID: booking.ID,
			Reference: booking.Reference,
			Date:      date,
		})
	}

	g.advanceWatermark(ctx, logger, schedule, month)

	logger.Info("generation complete",
		"created", len(report.Created),
		"conflicts", len(report.Conflicts),
		"errors", len(report.Errors))
	return report
}

// GenerateAll runs generation for every active schedule at the given month.
// Reports keep the schedule listing order regardless of worker scheduling.
func (g *Generator) GenerateAll(ctx context.Context, month occurrence.Month) ([]Report, error) {
	if g == nil {
		return nil, fmt.Errorf("Generator is nil")
	}

	schedules, err := g.schedules.ListActiveSchedules(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	return g.runPool(ctx, schedules, func(persistence.RecurringSchedule) occurrence.Month {
		return month
	}), nil
}

// GenerateDue runs generation for every active schedule at its own due
// month, computed from the schedule's watermark.
func (g *Generator) GenerateDue(ctx context.Context) ([]Report, error) {
	if g == nil {
		return nil, fmt.Errorf("Generator is nil")
	}

	schedules, err := g.schedules.ListActiveSchedules(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	now := g.now()
	return g.runPool(ctx, schedules, func(schedule persistence.RecurringSchedule) occurrence.Month {
		return NextGenerationMonth(schedule.LastGeneratedMonth, now)
	}), nil
}

// runPool fans schedules out over the worker pool. Each worker takes the
// per-schedule lock, so a concurrent single-schedule run serializes with
// the bulk run.
func (g *Generator) runPool(ctx context.Context, schedules []persistence.RecurringSchedule, monthFor func(persistence.RecurringSchedule) occurrence.Month) []Report {
	reports := make([]Report, len(schedules))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := g.workers
	if workers > len(schedules) {
		workers = len(schedules)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				schedule := schedules[i]
				month := monthFor(schedule)

				lock := g.lockFor(schedule.ID)
				lock.Lock()
				reports[i] = g.generate(ctx, schedule, month)
				lock.Unlock()
			}
		}()
	}

	for i := range schedules {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return reports
}

// ListSchedules returns the read-only listing with due-month hints.
func (g *Generator) ListSchedules(ctx context.Context) ([]ScheduleSummary, error) {
	if g == nil {
		return nil, fmt.Errorf("Generator is nil")
	}

	schedules, err := g.schedules.ListSchedules(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	now := g.now()
	summaries := make([]ScheduleSummary, 0, len(schedules))
	for _, schedule := range schedules {
		summaries = append(summaries, summarize(schedule, now))
	}
	return summaries, nil
}

// GetSchedule returns the listing view of one schedule.
func (g *Generator) GetSchedule(ctx context.Context, id string) (ScheduleSummary, error) {
	if g == nil {
		return ScheduleSummary{}, fmt.Errorf("Generator is nil")
	}

	schedule, err := g.schedules.GetSchedule(ctx, id)
	if err != nil {
		return ScheduleSummary{}, mapRepoError(err)
	}
	return summarize(schedule, g.now()), nil
}

func summarize(schedule persistence.RecurringSchedule, now time.Time) ScheduleSummary {
	return ScheduleSummary{
		ID:                  schedule.ID,
		CustomerID:          schedule.CustomerID,
		ServiceType:         schedule.ServiceType,
		Frequency:           schedule.Frequency,
		PreferredTime:       schedule.PreferredTime,
		StartDate:           schedule.StartDate,
		EndDate:             schedule.EndDate,
		IsActive:            schedule.IsActive,
		LastGeneratedMonth:  schedule.LastGeneratedMonth,
		NextGenerationMonth: NextGenerationMonth(schedule.LastGeneratedMonth, now).String(),
	}
}

// advanceWatermark records the generated month on the schedule, keeping the
// watermark monotone. Failures are logged, never surfaced: the watermark is
// advisory and the conflict check owns idempotency.
func (g *Generator) advanceWatermark(ctx context.Context, logger *slog.Logger, schedule persistence.RecurringSchedule, month occurrence.Month) {
	if schedule.LastGeneratedMonth != nil {
		current, err := occurrence.ParseMonth(*schedule.LastGeneratedMonth)
		if err == nil && !current.Before(month) {
			return
		}
	}

	if err := g.schedules.SetLastGeneratedMonth(ctx, schedule.ID, month.String(), g.now()); err != nil {
		logger.Warn("watermark update failed", "error", err)
	}
}

// buildBooking snapshots the schedule and price onto a new booking record.
func (g *Generator) buildBooking(schedule persistence.RecurringSchedule, date time.Time, snapshot pricing.Snapshot) persistence.Booking {
	now := g.now()
	id := g.idGenerator()
	scheduleID := schedule.ID

	return persistence.Booking{
		ID:            id,
		Reference:     bookingReference(now, id),
		ScheduleID:    &scheduleID,
		CustomerID:    schedule.CustomerID,
		CleanerID:     schedule.CleanerID,
		ServiceType:   schedule.ServiceType,
		Bedrooms:      schedule.Bedrooms,
		Bathrooms:     schedule.Bathrooms,
		Extras:        schedule.Extras,
		Notes:         schedule.Notes,
		AddressLine1:  schedule.AddressLine1,
		AddressSuburb: schedule.AddressSuburb,
		AddressCity:   schedule.AddressCity,
		BookingDate:   date,
		BookingTime:   schedule.PreferredTime,
		Status:        "pending",
		Subtotal:      snapshot.Subtotal,
		ServiceFee:    snapshot.ServiceFee,
		Discount:      snapshot.Discount,
		Total:         snapshot.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// bookingReference derives the human-readable reference shown to customers.
// The suffix keeps eight characters of the id so that references minted in
// the same second stay distinct; the column carries a unique constraint.
func bookingReference(now time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		suffix = "00000000"
	}
	return fmt.Sprintf("BK-%d-%s", now.Unix(), suffix)
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("schedule repository: %w", err)
}
