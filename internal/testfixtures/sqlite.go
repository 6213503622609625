package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/recurring-bookings/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Schedules *sqlite.ScheduleRepository
	Bookings  *sqlite.BookingRepository
}

// NewSQLiteHarness opens a temporary database, applies the schema and
// registers cleanup with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "bookings.db")
	pool, err := sqlite.NewConnectionPool(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = pool.Close() })

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Pool:      pool,
		Schedules: sqlite.NewScheduleRepository(pool),
		Bookings:  sqlite.NewBookingRepository(pool),
	}
}
