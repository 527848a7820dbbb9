package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

var (
	personCounter     uint64
	eventCounter      uint64
	attendanceCounter uint64
	sessionCounter    uint64
)

var referenceTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// PersonOption configures a generated person fixture.
type PersonOption func(*persistence.Person)

// NewPersonFixture returns a deterministic registered person with optional
// overrides. Use WithGuest to turn it into a credential-less guest.
func NewPersonFixture(opts ...PersonOption) persistence.Person {
	idx := atomic.AddUint64(&personCounter, 1)
	id := fmt.Sprintf("person-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	person := persistence.Person{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Person %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         persistence.RoleStandard,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&person)
	}
	return person
}

// WithPersonID overrides the generated person id.
func WithPersonID(id string) PersonOption {
	return func(p *persistence.Person) {
		p.ID = id
	}
}

// WithPersonEmail overrides the generated email address.
func WithPersonEmail(email string) PersonOption {
	return func(p *persistence.Person) {
		p.Email = email
	}
}

// WithDisplayName overrides the generated display name.
func WithDisplayName(name string) PersonOption {
	return func(p *persistence.Person) {
		p.DisplayName = name
	}
}

// WithGuest clears the password hash, marking the person a guest.
func WithGuest() PersonOption {
	return func(p *persistence.Person) {
		p.PasswordHash = ""
	}
}

// WithAdminRole grants the admin role.
func WithAdminRole() PersonOption {
	return func(p *persistence.Person) {
		p.Role = persistence.RoleAdmin
	}
}

// WithCanCreateEvents grants the event creation permission.
func WithCanCreateEvents() PersonOption {
	return func(p *persistence.Person) {
		p.CanCreateEvents = true
	}
}

// WithPersonCreatedAt overrides both timestamps of the person.
func WithPersonCreatedAt(at time.Time) PersonOption {
	return func(p *persistence.Person) {
		p.CreatedAt = at
		p.UpdatedAt = at
	}
}

// EventOption configures a generated event fixture.
type EventOption func(*persistence.Event)

// NewEventFixture returns a deterministic public event starting one day after
// the reference time, created by the given person.
func NewEventFixture(creatorID string, opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	city := "Oslo"
	category := "meetup"
	event := persistence.Event{
		ID:          id,
		CreatorID:   creatorID,
		Title:       fmt.Sprintf("Event %03d", idx),
		Description: fmt.Sprintf("Description for event %03d", idx),
		City:        &city,
		Category:    &category,
		Visibility:  persistence.VisibilityPublic,
		Start:       referenceTime.Add(24 * time.Hour),
		End:         referenceTime.Add(26 * time.Hour),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event id.
func WithEventID(id string) EventOption {
	return func(e *persistence.Event) {
		e.ID = id
	}
}

// WithEventStart overrides the start time.
func WithEventStart(start time.Time) EventOption {
	return func(e *persistence.Event) {
		e.Start = start
	}
}

// WithEventEnd overrides the end time.
func WithEventEnd(end time.Time) EventOption {
	return func(e *persistence.Event) {
		e.End = end
	}
}

// WithVisibility overrides the event visibility.
func WithVisibility(visibility string) EventOption {
	return func(e *persistence.Event) {
		e.Visibility = visibility
	}
}

// AttendanceOption configures a generated attendance fixture.
type AttendanceOption func(*persistence.Attendance)

// NewAttendanceFixture returns a deterministic attendance row linking the
// given person and event.
func NewAttendanceFixture(personID, eventID string, opts ...AttendanceOption) persistence.Attendance {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	attendance := persistence.Attendance{
		ID:        fmt.Sprintf("attendance-%03d", idx),
		PersonID:  personID,
		EventID:   eventID,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&attendance)
	}
	return attendance
}

// WithAttendanceID overrides the generated attendance id.
func WithAttendanceID(id string) AttendanceOption {
	return func(a *persistence.Attendance) {
		a.ID = id
	}
}

// SessionOption configures a generated session fixture.
type SessionOption func(*persistence.Session)

// NewSessionFixture returns a deterministic unexpired session for the given
// person.
func NewSessionFixture(personID string, opts ...SessionOption) persistence.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	session := persistence.Session{
		ID:        fmt.Sprintf("session-%03d", idx),
		PersonID:  personID,
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(s *persistence.Session) {
		s.Token = token
	}
}

// WithSessionExpiry overrides the expiry timestamp.
func WithSessionExpiry(at time.Time) SessionOption {
	return func(s *persistence.Session) {
		s.ExpiresAt = at
	}
}

// WithSessionRevoked marks the session revoked at the given time.
func WithSessionRevoked(at time.Time) SessionOption {
	return func(s *persistence.Session) {
		s.RevokedAt = &at
	}
}
