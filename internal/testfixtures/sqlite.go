package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/event-attendance/internal/persistence"
	"github.com/example/event-attendance/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	People      persistence.PersonRepository
	Events      persistence.EventRepository
	Attendances persistence.AttendanceRepository
	Sessions    persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness on a migrated temporary
// database file. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := "file:" + filepath.Join(dir, "attendance.db") + "?_pragma=foreign_keys(1)"

	pool, err := sqlite.Open(dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		People:      sqlite.NewPersonRepository(pool),
		Events:      sqlite.NewEventRepository(pool),
		Attendances: sqlite.NewAttendanceRepository(pool),
		Sessions:    sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
