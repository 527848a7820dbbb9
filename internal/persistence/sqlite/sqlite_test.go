package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

var testBase = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func setupTestPool(t *testing.T) (*ConnectionPool, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := Open("file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pool, func() { pool.Close() }
}

func seedPerson(t *testing.T, pool *ConnectionPool, id, email, passwordHash string) {
	t.Helper()

	repo := NewPersonRepository(pool)
	err := repo.CreatePerson(context.Background(), persistence.Person{
		ID:           id,
		Email:        email,
		DisplayName:  "Person " + id,
		PasswordHash: passwordHash,
		Role:         persistence.RoleStandard,
		CreatedAt:    testBase,
		UpdatedAt:    testBase,
	})
	if err != nil {
		t.Fatalf("Failed to seed person %s: %v", id, err)
	}
}

func seedEvent(t *testing.T, pool *ConnectionPool, id, creatorID string) {
	t.Helper()

	repo := NewEventRepository(pool)
	err := repo.CreateEvent(context.Background(), persistence.Event{
		ID:         id,
		CreatorID:  creatorID,
		Title:      "Event " + id,
		Visibility: persistence.VisibilityPublic,
		Start:      testBase.Add(24 * time.Hour),
		CreatedAt:  testBase,
		UpdatedAt:  testBase,
	})
	if err != nil {
		t.Fatalf("Failed to seed event %s: %v", id, err)
	}
}

func seedAttendance(t *testing.T, pool *ConnectionPool, id, personID, eventID string) {
	t.Helper()

	repo := NewAttendanceRepository(pool)
	err := repo.CreateAttendance(context.Background(), persistence.Attendance{
		ID:        id,
		PersonID:  personID,
		EventID:   eventID,
		CreatedAt: testBase,
	})
	if err != nil {
		t.Fatalf("Failed to seed attendance %s: %v", id, err)
	}
}
