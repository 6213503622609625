package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/recurring-bookings/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const scheduleColumns = `id, customer_id, service_type, bedrooms, bathrooms, extras, notes,
	address_line1, address_suburb, address_city, cleaner_id,
	frequency, day_of_week, day_of_month, days_of_week, preferred_time,
	start_date, end_date, is_active, last_generated_month, created_at, updated_at`

// CreateSchedule inserts a new recurring schedule.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.RecurringSchedule) error {
	if schedule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	extras, err := encodeExtras(schedule.Extras)
	if err != nil {
		return err
	}

	var dayOfWeek, dayOfMonth, daysOfWeek sql.NullInt64
	if schedule.DayOfWeek != nil {
		dayOfWeek = sql.NullInt64{Int64: int64(*schedule.DayOfWeek), Valid: true}
	}
	if schedule.DayOfMonth != nil {
		dayOfMonth = sql.NullInt64{Int64: int64(*schedule.DayOfMonth), Valid: true}
	}
	if schedule.DaysOfWeek != nil {
		daysOfWeek = sql.NullInt64{Int64: int64(*schedule.DaysOfWeek), Valid: true}
	}

	query := `INSERT INTO recurring_schedules (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.helper.Exec(ctx, query,
		schedule.ID,
		schedule.CustomerID,
		schedule.ServiceType,
		schedule.Bedrooms,
		schedule.Bathrooms,
		extras,
		nullString(schedule.Notes),
		schedule.AddressLine1,
		schedule.AddressSuburb,
		schedule.AddressCity,
		nullString(schedule.CleanerID),
		schedule.Frequency,
		dayOfWeek,
		dayOfMonth,
		daysOfWeek,
		schedule.PreferredTime,
		schedule.StartDate.UTC().Format(dateLayout),
		nullDate(schedule.EndDate),
		schedule.IsActive,
		nullString(schedule.LastGeneratedMonth),
		schedule.CreatedAt.UTC().Format(time.RFC3339),
		schedule.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.RecurringSchedule, error) {
	if id == "" {
		return persistence.RecurringSchedule{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM recurring_schedules WHERE id = ?`, id)

	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.RecurringSchedule{}, persistence.ErrNotFound
		}
		return persistence.RecurringSchedule{}, r.mapper.MapError(err)
	}
	return schedule, nil
}

// ListSchedules returns every schedule ordered by creation time.
func (r *ScheduleRepository) ListSchedules(ctx context.Context) ([]persistence.RecurringSchedule, error) {
	return r.list(ctx,
		`SELECT `+scheduleColumns+` FROM recurring_schedules ORDER BY created_at ASC, id ASC`)
}

// ListActiveSchedules returns schedules with is_active set.
func (r *ScheduleRepository) ListActiveSchedules(ctx context.Context) ([]persistence.RecurringSchedule, error) {
	return r.list(ctx,
		`SELECT `+scheduleColumns+` FROM recurring_schedules WHERE is_active = 1 ORDER BY created_at ASC, id ASC`)
}

// SetLastGeneratedMonth advances the generation watermark for a schedule.
func (r *ScheduleRepository) SetLastGeneratedMonth(ctx context.Context, id, month string, updatedAt time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE recurring_schedules SET last_generated_month = ?, updated_at = ? WHERE id = ?`,
		month, updatedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) list(ctx context.Context, query string) ([]persistence.RecurringSchedule, error) {
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var schedules []persistence.RecurringSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return schedules, nil
}

func scanSchedule(scan func(dest ...any) error) (persistence.RecurringSchedule, error) {
	var (
		schedule                         persistence.RecurringSchedule
		extrasRaw                        string
		notes, cleanerID, lastGenerated  sql.NullString
		endDate                          sql.NullString
		dayOfWeek, dayOfMonth, weekdays  sql.NullInt64
		startDateStr, createdAt, updated string
	)

	err := scan(
		&schedule.ID,
		&schedule.CustomerID,
		&schedule.ServiceType,
		&schedule.Bedrooms,
		&schedule.Bathrooms,
		&extrasRaw,
		&notes,
		&schedule.AddressLine1,
		&schedule.AddressSuburb,
		&schedule.AddressCity,
		&cleanerID,
		&schedule.Frequency,
		&dayOfWeek,
		&dayOfMonth,
		&weekdays,
		&schedule.PreferredTime,
		&startDateStr,
		&endDate,
		&schedule.IsActive,
		&lastGenerated,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.RecurringSchedule{}, err
	}

	schedule.Notes = stringPtr(notes)
	schedule.CleanerID = stringPtr(cleanerID)
	schedule.LastGeneratedMonth = stringPtr(lastGenerated)

	if dayOfWeek.Valid {
		value := int(dayOfWeek.Int64)
		schedule.DayOfWeek = &value
	}
	if dayOfMonth.Valid {
		value := int(dayOfMonth.Int64)
		schedule.DayOfMonth = &value
	}
	if weekdays.Valid {
		value := uint8(weekdays.Int64)
		schedule.DaysOfWeek = &value
	}

	if schedule.Extras, err = decodeExtras(extrasRaw); err != nil {
		return persistence.RecurringSchedule{}, err
	}
	if schedule.StartDate, err = parseDate(startDateStr); err != nil {
		return persistence.RecurringSchedule{}, err
	}
	if endDate.Valid {
		parsed, err := parseDate(endDate.String)
		if err != nil {
			return persistence.RecurringSchedule{}, err
		}
		schedule.EndDate = &parsed
	}
	if schedule.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.RecurringSchedule{}, fmt.Errorf("parse created_at: %w", err)
	}
	if schedule.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return persistence.RecurringSchedule{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return schedule, nil
}
