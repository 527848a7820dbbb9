package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/event-attendance/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository using SQLite.
type AttendanceRepository struct {
	pool *ConnectionPool
}

// NewAttendanceRepository creates a SQLite-backed attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// CreateAttendance inserts an RSVP row. The UNIQUE (person_id, event_id)
// index arbitrates concurrent joins: the losing insert surfaces ErrDuplicate
// without any read-then-write window.
func (r *AttendanceRepository) CreateAttendance(ctx context.Context, attendance persistence.Attendance) error {
	if attendance.ID == "" || attendance.PersonID == "" || attendance.EventID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendances (id, person_id, event_id, created_at)
		VALUES (?, ?, ?, ?)
	`,
		attendance.ID,
		attendance.PersonID,
		attendance.EventID,
		formatTime(attendance.CreatedAt),
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// GetAttendance retrieves an attendance row by ID.
func (r *AttendanceRepository) GetAttendance(ctx context.Context, id string) (persistence.Attendance, error) {
	if id == "" {
		return persistence.Attendance{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT id, person_id, event_id, created_at FROM attendances WHERE id = ?", id)
	return scanAttendance(row)
}

// GetAttendanceForPerson retrieves the unique row for a (person, event) pair.
func (r *AttendanceRepository) GetAttendanceForPerson(ctx context.Context, personID, eventID string) (persistence.Attendance, error) {
	if personID == "" || eventID == "" {
		return persistence.Attendance{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT id, person_id, event_id, created_at FROM attendances WHERE person_id = ? AND event_id = ?",
		personID, eventID)
	return scanAttendance(row)
}

// ListAttendancesForEvent returns attendance rows for an event in join order.
func (r *AttendanceRepository) ListAttendancesForEvent(ctx context.Context, eventID string) ([]persistence.Attendance, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, person_id, event_id, created_at
		FROM attendances
		WHERE event_id = ?
		ORDER BY created_at ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var attendances []persistence.Attendance
	for rows.Next() {
		attendance, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		attendances = append(attendances, attendance)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return attendances, nil
}

// CountAttendancesForEvent returns the number of attendance rows for an event.
func (r *AttendanceRepository) CountAttendancesForEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendances WHERE event_id = ?", eventID).Scan(&count)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	return count, nil
}

// DeleteAttendance removes an attendance row by ID.
func (r *AttendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM attendances WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func scanAttendance(row rowScanner) (persistence.Attendance, error) {
	var attendance persistence.Attendance
	var createdAt string

	err := row.Scan(&attendance.ID, &attendance.PersonID, &attendance.EventID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Attendance{}, persistence.ErrNotFound
		}
		return persistence.Attendance{}, mapSQLiteError(err)
	}

	if attendance.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Attendance{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return attendance, nil
}
