package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recurring-bookings/internal/persistence"
)

func TestScheduleRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository(newTestPool(t))
	ctx := context.Background()

	schedule := testSchedule("sched-1")
	notes := "gate code 4417"
	schedule.Notes = &notes
	endDate := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	schedule.EndDate = &endDate

	require.NoError(t, repo.CreateSchedule(ctx, schedule))

	got, err := repo.GetSchedule(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, schedule.CustomerID, got.CustomerID)
	assert.Equal(t, schedule.Frequency, got.Frequency)
	require.NotNil(t, got.DayOfWeek)
	assert.Equal(t, 2, *got.DayOfWeek)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(endDate))
	assert.Equal(t, map[string]int{"laundry": 1}, got.Extras)
	assert.Nil(t, got.LastGeneratedMonth)
	assert.True(t, got.IsActive)
}

func TestScheduleRepository_GetMissing(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository(newTestPool(t))

	_, err := repo.GetSchedule(context.Background(), "nope")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestScheduleRepository_DuplicateID(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository(newTestPool(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateSchedule(ctx, testSchedule("sched-1")))
	err := repo.CreateSchedule(ctx, testSchedule("sched-1"))
	assert.ErrorIs(t, err, persistence.ErrDuplicate)
}

func TestScheduleRepository_ListActiveSchedules(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository(newTestPool(t))
	ctx := context.Background()

	active := testSchedule("sched-active")
	inactive := testSchedule("sched-inactive")
	inactive.IsActive = false

	require.NoError(t, repo.CreateSchedule(ctx, active))
	require.NoError(t, repo.CreateSchedule(ctx, inactive))

	all, err := repo.ListSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := repo.ListActiveSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "sched-active", onlyActive[0].ID)
}

func TestScheduleRepository_SetLastGeneratedMonth(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository(newTestPool(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateSchedule(ctx, testSchedule("sched-1")))

	updatedAt := time.Date(2024, time.February, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastGeneratedMonth(ctx, "sched-1", "2024-02", updatedAt))

	got, err := repo.GetSchedule(ctx, "sched-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastGeneratedMonth)
	assert.Equal(t, "2024-02", *got.LastGeneratedMonth)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))

	assert.ErrorIs(t,
		repo.SetLastGeneratedMonth(ctx, "missing", "2024-02", updatedAt),
		persistence.ErrNotFound)
}
