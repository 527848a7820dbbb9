package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

// In-memory stores standing in for the persistence adapters. They return the
// persistence sentinels the real adapters pass through, including
// ErrDuplicate for a second attendance on the same (person, event) pair.

type personStoreStub struct {
	mu        sync.Mutex
	people    map[string]Person
	hashes    map[string]string
	createErr error
	updateErr error
	mints     int
}

func newPersonStoreStub() *personStoreStub {
	return &personStoreStub{
		people: make(map[string]Person),
		hashes: make(map[string]string),
	}
}

func (s *personStoreStub) seed(person Person, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[person.ID] = person
	s.hashes[person.ID] = hash
}

func (s *personStoreStub) CreatePerson(_ context.Context, creds PersonCredentials) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Person{}, s.createErr
	}
	for _, existing := range s.people {
		if existing.Email == creds.Person.Email {
			return Person{}, persistence.ErrDuplicate
		}
	}
	person := creds.Person
	person.Guest = creds.PasswordHash == ""
	if person.Guest {
		s.mints++
	}
	s.people[person.ID] = person
	s.hashes[person.ID] = creds.PasswordHash
	return person, nil
}

func (s *personStoreStub) UpdatePerson(_ context.Context, person Person) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return Person{}, s.updateErr
	}
	current, ok := s.people[person.ID]
	if !ok {
		return Person{}, persistence.ErrNotFound
	}
	person.Guest = current.Guest
	s.people[person.ID] = person
	return person, nil
}

func (s *personStoreStub) GetPerson(_ context.Context, id string) (Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	person, ok := s.people[id]
	if !ok {
		return Person{}, persistence.ErrNotFound
	}
	return person, nil
}

func (s *personStoreStub) GetPersonByEmail(_ context.Context, email string) (PersonCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, person := range s.people {
		if person.Email == email {
			return PersonCredentials{Person: person, PasswordHash: s.hashes[id]}, nil
		}
	}
	return PersonCredentials{}, persistence.ErrNotFound
}

func (s *personStoreStub) ListPeople(_ context.Context) ([]Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	people := make([]Person, 0, len(s.people))
	for _, person := range s.people {
		people = append(people, person)
	}
	return people, nil
}

func (s *personStoreStub) guestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mints
}

type eventStoreStub struct {
	mu     sync.Mutex
	events map[string]Event
}

func newEventStoreStub(events ...Event) *eventStoreStub {
	stub := &eventStoreStub{events: make(map[string]Event)}
	for _, event := range events {
		stub.events[event.ID] = event
	}
	return stub
}

func (s *eventStoreStub) CreateEvent(_ context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return Event{}, persistence.ErrDuplicate
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *eventStoreStub) UpdateEvent(_ context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[event.ID]
	if !ok {
		return Event{}, persistence.ErrNotFound
	}
	// Creator never changes at the storage layer.
	event.CreatorID = current.CreatorID
	s.events[event.ID] = event
	return event, nil
}

func (s *eventStoreStub) GetEvent(_ context.Context, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (s *eventStoreStub) ListEvents(_ context.Context, filter EventListFilter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []Event
	for _, event := range s.events {
		if filter.Visibility != "" && event.Visibility != filter.Visibility {
			continue
		}
		if filter.CreatorID != "" && event.CreatorID != filter.CreatorID {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *eventStoreStub) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type attendanceStoreStub struct {
	mu          sync.Mutex
	attendances map[string]Attendance
	createErr   error
	getErr      error
}

func newAttendanceStoreStub(attendances ...Attendance) *attendanceStoreStub {
	stub := &attendanceStoreStub{attendances: make(map[string]Attendance)}
	for _, attendance := range attendances {
		stub.attendances[attendance.ID] = attendance
	}
	return stub
}

func (s *attendanceStoreStub) CreateAttendance(_ context.Context, attendance Attendance) (Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Attendance{}, s.createErr
	}
	for _, existing := range s.attendances {
		if existing.PersonID == attendance.PersonID && existing.EventID == attendance.EventID {
			return Attendance{}, persistence.ErrDuplicate
		}
	}
	s.attendances[attendance.ID] = attendance
	return attendance, nil
}

func (s *attendanceStoreStub) GetAttendance(_ context.Context, id string) (Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Attendance{}, s.getErr
	}
	attendance, ok := s.attendances[id]
	if !ok {
		return Attendance{}, persistence.ErrNotFound
	}
	return attendance, nil
}

func (s *attendanceStoreStub) GetAttendanceForPerson(_ context.Context, personID, eventID string) (Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, attendance := range s.attendances {
		if attendance.PersonID == personID && attendance.EventID == eventID {
			return attendance, nil
		}
	}
	return Attendance{}, persistence.ErrNotFound
}

func (s *attendanceStoreStub) ListAttendancesForEvent(_ context.Context, eventID string) ([]Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attendances []Attendance
	for _, attendance := range s.attendances {
		if attendance.EventID == eventID {
			attendances = append(attendances, attendance)
		}
	}
	return attendances, nil
}

func (s *attendanceStoreStub) CountAttendancesForEvent(_ context.Context, eventID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, attendance := range s.attendances {
		if attendance.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (s *attendanceStoreStub) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendances[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.attendances, id)
	return nil
}

func (s *attendanceStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendances)
}

type sessionStoreStub struct {
	mu        sync.Mutex
	sessions  map[string]Session
	createErr error
}

func newSessionStoreStub(sessions ...Session) *sessionStoreStub {
	stub := &sessionStoreStub{sessions: make(map[string]Session)}
	for _, session := range sessions {
		stub.sessions[session.Token] = session
	}
	return stub
}

func (s *sessionStoreStub) CreateSession(_ context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	if _, ok := s.sessions[session.Token]; ok {
		return Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionStoreStub) GetSessionByToken(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionStoreStub) RevokeSession(_ context.Context, token string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return nil
}

func (s *sessionStoreStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if !reference.Before(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	return nil
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	counter := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}
