package persistence

import (
	"context"
	"time"
)

// PersonRepository exposes CRUD operations for people, registered and guest.
type PersonRepository interface {
	CreatePerson(ctx context.Context, person Person) error
	UpdatePerson(ctx context.Context, person Person) error
	GetPerson(ctx context.Context, id string) (Person, error)
	GetPersonByEmail(ctx context.Context, email string) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	// DeleteOrphanGuests removes guest people created before the cutoff that
	// hold no attendance rows. Returns the number of rows removed.
	DeleteOrphanGuests(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventFilter narrows event queries.
type EventFilter struct {
	Visibility string
	CreatorID  string
}

// EventRepository stores published events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	// DeleteEvent removes the event and cascades to its attendance rows.
	DeleteEvent(ctx context.Context, id string) error
}

// AttendanceRepository stores RSVP rows. CreateAttendance must rely on the
// storage unique constraint over (person_id, event_id) so concurrent joins
// resolve to exactly one winner; the loser receives ErrDuplicate.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance Attendance) error
	GetAttendance(ctx context.Context, id string) (Attendance, error)
	GetAttendanceForPerson(ctx context.Context, personID, eventID string) (Attendance, error)
	ListAttendancesForEvent(ctx context.Context, eventID string) ([]Attendance, error)
	CountAttendancesForEvent(ctx context.Context, eventID string) (int, error)
	DeleteAttendance(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
