package generation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recurring-bookings/internal/generation"
	"github.com/example/recurring-bookings/internal/occurrence"
	"github.com/example/recurring-bookings/internal/pricing"
	"github.com/example/recurring-bookings/internal/testfixtures"
)

func TestGeneratorAgainstSQLite(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	clock := testfixtures.NewClock(time.Date(2024, time.January, 5, 6, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("fb0")
	quoter := pricing.NewTableQuoter(pricing.StaticRates(pricing.DefaultRates()))

	gen := generation.NewGenerator(
		harness.Schedules, harness.Bookings, quoter, nil,
		ids.NextFunc(), clock.NowFunc(), nil, 2)

	weekly := testfixtures.NewScheduleFixture()
	monthly := testfixtures.NewScheduleFixture(
		testfixtures.WithFrequency("monthly", 31),
		testfixtures.WithExtras(map[string]int{"inside_oven": 1}))
	dormant := testfixtures.NewScheduleFixture(testfixtures.Inactive())
	require.NoError(t, harness.Schedules.CreateSchedule(ctx, weekly))
	require.NoError(t, harness.Schedules.CreateSchedule(ctx, monthly))
	require.NoError(t, harness.Schedules.CreateSchedule(ctx, dormant))

	january := occurrence.Month{Year: 2024, Month: time.January}

	reports, err := gen.GenerateAll(ctx, january)
	require.NoError(t, err)
	require.Len(t, reports, 2, "inactive schedules are not run")

	byID := make(map[string]generation.Report, len(reports))
	for _, report := range reports {
		byID[report.ScheduleID] = report
	}
	assert.Len(t, byID[weekly.ID].Created, 5, "five Tuesdays in January 2024")
	require.Len(t, byID[monthly.ID].Created, 1)
	assert.Equal(t, 31, byID[monthly.ID].Created[0].Date.Day())

	// Bookings landed with the price snapshot.
	booking, err := harness.Bookings.GetBooking(ctx, byID[monthly.ID].Created[0].BookingID)
	require.NoError(t, err)
	assert.Equal(t, "pending", booking.Status)
	assert.False(t, booking.Total.IsZero())
	assert.Equal(t, map[string]int{"inside_oven": 1}, booking.Extras)

	// Watermarks advanced for both generated schedules.
	stored, err := harness.Schedules.GetSchedule(ctx, weekly.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastGeneratedMonth)
	assert.Equal(t, "2024-01", *stored.LastGeneratedMonth)

	// Re-running the same month is idempotent end to end.
	again, err := gen.Generate(ctx, weekly.ID, january)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Conflicts, 5)

	// A due run now targets February for both schedules.
	dueReports, err := gen.GenerateDue(ctx)
	require.NoError(t, err)
	for _, report := range dueReports {
		assert.Equal(t, "2024-02", report.Month)
	}
}

func TestGeneratorClampPolicyAgainstSQLite(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	quoter := pricing.NewTableQuoter(pricing.StaticRates(pricing.DefaultRates()))
	calc := occurrence.NewCalculator(occurrence.SkipMissingDay)
	ids := testfixtures.NewIDGenerator("fb1")
	gen := generation.NewGenerator(
		harness.Schedules, harness.Bookings, quoter, calc,
		ids.NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc(), nil, 1)

	schedule := testfixtures.NewScheduleFixture(testfixtures.WithFrequency("monthly", 31))
	require.NoError(t, harness.Schedules.CreateSchedule(ctx, schedule))

	report, err := gen.Generate(ctx, schedule.ID, occurrence.Month{Year: 2024, Month: time.April})
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Equal(t, generation.SkipNoDates, report.SkippedReason)
}
