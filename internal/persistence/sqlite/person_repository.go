package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

// PersonRepository implements persistence.PersonRepository using SQLite.
type PersonRepository struct {
	pool *ConnectionPool
}

// NewPersonRepository creates a SQLite-backed person repository.
func NewPersonRepository(pool *ConnectionPool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

const personColumns = "id, email, display_name, password_hash, role, can_create_events, created_at, updated_at"

// CreatePerson inserts a new person. Guests are stored with an empty password
// hash; the unique index on email rejects duplicates.
func (r *PersonRepository) CreatePerson(ctx context.Context, person persistence.Person) error {
	if person.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if person.Role == "" {
		person.Role = persistence.RoleStandard
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO people (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		person.ID,
		normalizeEmail(person.Email),
		person.DisplayName,
		person.PasswordHash,
		person.Role,
		person.CanCreateEvents,
		formatTime(person.CreatedAt),
		formatTime(person.UpdatedAt),
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// UpdatePerson updates an existing person.
func (r *PersonRepository) UpdatePerson(ctx context.Context, person persistence.Person) error {
	if person.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE people
		SET email = ?, display_name = ?, password_hash = ?, role = ?, can_create_events = ?, updated_at = ?
		WHERE id = ?
	`,
		normalizeEmail(person.Email),
		person.DisplayName,
		person.PasswordHash,
		person.Role,
		person.CanCreateEvents,
		formatTime(person.UpdatedAt),
		person.ID,
	)
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

// GetPerson retrieves a person by ID.
func (r *PersonRepository) GetPerson(ctx context.Context, id string) (persistence.Person, error) {
	if id == "" {
		return persistence.Person{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people WHERE id = ?", id)
	return scanPerson(row)
}

// GetPersonByEmail retrieves a person by normalized email address.
func (r *PersonRepository) GetPersonByEmail(ctx context.Context, email string) (persistence.Person, error) {
	if email == "" {
		return persistence.Person{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM people WHERE email = ?", normalizeEmail(email))
	return scanPerson(row)
}

// ListPeople returns all people ordered by creation timestamp then ID.
func (r *PersonRepository) ListPeople(ctx context.Context) ([]persistence.Person, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+personColumns+" FROM people ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var people []persistence.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return people, nil
}

// DeleteOrphanGuests removes guest people created before the cutoff that no
// longer hold any attendance row. Guests are recognized by the empty
// password hash sentinel.
func (r *PersonRepository) DeleteOrphanGuests(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		DELETE FROM people
		WHERE password_hash = ''
		  AND created_at < ?
		  AND NOT EXISTS (SELECT 1 FROM attendances WHERE attendances.person_id = people.id)
		  AND NOT EXISTS (SELECT 1 FROM events WHERE events.creator_id = people.id)
	`, formatTime(cutoff))
	if err != nil {
		return 0, mapSQLiteError(err)
	}

	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (persistence.Person, error) {
	var person persistence.Person
	var createdAt, updatedAt string

	err := row.Scan(
		&person.ID,
		&person.Email,
		&person.DisplayName,
		&person.PasswordHash,
		&person.Role,
		&person.CanCreateEvents,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Person{}, persistence.ErrNotFound
		}
		return persistence.Person{}, mapSQLiteError(err)
	}

	if person.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Person{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if person.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Person{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return person, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
