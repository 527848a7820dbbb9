package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/event-attendance/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a SQLite-backed event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = "id, creator_id, title, description, image_url, address, city, category, ticket_url, visibility, start_at, end_at, created_at, updated_at"

// CreateEvent inserts a new event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.CreatorID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.CreatorID,
		event.Title,
		event.Description,
		nullString(event.ImageURL),
		nullString(event.Address),
		nullString(event.City),
		nullString(event.Category),
		nullString(event.TicketURL),
		event.Visibility,
		formatTime(event.Start),
		formatTime(event.End),
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return mapSQLiteError(err)
	}

	return nil
}

// UpdateEvent updates an existing event. The creator column is never touched.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, image_url = ?, address = ?, city = ?, category = ?,
		    ticket_url = ?, visibility = ?, start_at = ?, end_at = ?, updated_at = ?
		WHERE id = ?
	`,
		event.Title,
		event.Description,
		nullString(event.ImageURL),
		nullString(event.Address),
		nullString(event.City),
		nullString(event.Category),
		nullString(event.TicketURL),
		event.Visibility,
		formatTime(event.Start),
		formatTime(event.End),
		formatTime(event.UpdatedAt),
		event.ID,
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

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	return scanEvent(row)
}

// ListEvents returns events matching the filter ordered by start date then ID.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := "SELECT " + eventColumns + " FROM events"
	var clauses []string
	var args []any

	if filter.Visibility != "" {
		clauses = append(clauses, "visibility = ?")
		args = append(args, filter.Visibility)
	}
	if filter.CreatorID != "" {
		clauses = append(clauses, "creator_id = ?")
		args = append(args, filter.CreatorID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY start_at ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}

	return events, nil
}

// DeleteEvent removes an event. Attendance rows cascade via the foreign key.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
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

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var imageURL, address, city, category, ticketURL sql.NullString
	var start, end, createdAt, updatedAt string

	err := row.Scan(
		&event.ID,
		&event.CreatorID,
		&event.Title,
		&event.Description,
		&imageURL,
		&address,
		&city,
		&category,
		&ticketURL,
		&event.Visibility,
		&start,
		&end,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, mapSQLiteError(err)
	}

	event.ImageURL = stringPtr(imageURL)
	event.Address = stringPtr(address)
	event.City = stringPtr(city)
	event.Category = stringPtr(category)
	event.TicketURL = stringPtr(ticketURL)

	if event.Start, err = parseTime(start); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse start_at: %w", err)
	}
	if event.End, err = parseTime(end); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse end_at: %w", err)
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return event, nil
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
	out := value.String
	return &out
}
