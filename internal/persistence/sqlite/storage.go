package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// schema holds the DDL for the booking store. Statements are idempotent so
// Migrate can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS recurring_schedules (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		service_type TEXT NOT NULL,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		extras TEXT NOT NULL DEFAULT '{}',
		notes TEXT,
		address_line1 TEXT NOT NULL DEFAULT '',
		address_suburb TEXT NOT NULL DEFAULT '',
		address_city TEXT NOT NULL DEFAULT '',
		cleaner_id TEXT,
		frequency TEXT NOT NULL,
		day_of_week INTEGER,
		day_of_month INTEGER,
		days_of_week INTEGER,
		preferred_time TEXT NOT NULL DEFAULT '08:00',
		start_date TEXT NOT NULL,
		end_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_generated_month TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_active
		ON recurring_schedules (is_active)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL UNIQUE,
		schedule_id TEXT REFERENCES recurring_schedules(id),
		customer_id TEXT NOT NULL,
		cleaner_id TEXT,
		service_type TEXT NOT NULL,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		extras TEXT NOT NULL DEFAULT '{}',
		notes TEXT,
		address_line1 TEXT NOT NULL DEFAULT '',
		address_suburb TEXT NOT NULL DEFAULT '',
		address_city TEXT NOT NULL DEFAULT '',
		booking_date TEXT NOT NULL,
		booking_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		subtotal TEXT NOT NULL,
		service_fee TEXT NOT NULL,
		discount TEXT NOT NULL,
		total TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	// One active booking per customer per date; cancelled rows free the slot.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_customer_date_active
		ON bookings (customer_id, booking_date)
		WHERE status != 'cancelled'`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_schedule
		ON bookings (schedule_id)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, statement := range schema {
		if _, err := pool.DB().ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}

func encodeExtras(extras map[string]int) (string, error) {
	if len(extras) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(extras)
	if err != nil {
		return "", fmt.Errorf("encode extras: %w", err)
	}
	return string(raw), nil
}

func decodeExtras(raw string) (map[string]int, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var extras map[string]int
	if err := json.Unmarshal([]byte(raw), &extras); err != nil {
		return nil, fmt.Errorf("decode extras: %w", err)
	}
	return extras, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullDate(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(dateLayout), Valid: true}
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return date, nil
}
