package main

import (
	"context"
	"time"

	"github.com/example/event-attendance/internal/application"
	"github.com/example/event-attendance/internal/persistence"
)

// The adapters translate between the application layer's domain types and
// the persistence models. Persistence sentinel errors pass through untouched;
// the services translate them.

type personAdapter struct {
	repo persistence.PersonRepository
}

func newPersonAdapter(repo persistence.PersonRepository) *personAdapter {
	return &personAdapter{repo: repo}
}

func (a *personAdapter) CreatePerson(ctx context.Context, credentials application.PersonCredentials) (application.Person, error) {
	if err := a.repo.CreatePerson(ctx, toPersistencePerson(credentials.Person, credentials.PasswordHash)); err != nil {
		return application.Person{}, err
	}
	stored, err := a.repo.GetPerson(ctx, credentials.Person.ID)
	if err != nil {
		return application.Person{}, err
	}
	return toApplicationPerson(stored), nil
}

func (a *personAdapter) UpdatePerson(ctx context.Context, person application.Person) (application.Person, error) {
	current, err := a.repo.GetPerson(ctx, person.ID)
	if err != nil {
		return application.Person{}, err
	}
	if err := a.repo.UpdatePerson(ctx, toPersistencePerson(person, current.PasswordHash)); err != nil {
		return application.Person{}, err
	}
	stored, err := a.repo.GetPerson(ctx, person.ID)
	if err != nil {
		return application.Person{}, err
	}
	return toApplicationPerson(stored), nil
}

func (a *personAdapter) GetPerson(ctx context.Context, id string) (application.Person, error) {
	stored, err := a.repo.GetPerson(ctx, id)
	if err != nil {
		return application.Person{}, err
	}
	return toApplicationPerson(stored), nil
}

func (a *personAdapter) GetPersonByEmail(ctx context.Context, email string) (application.PersonCredentials, error) {
	stored, err := a.repo.GetPersonByEmail(ctx, email)
	if err != nil {
		return application.PersonCredentials{}, err
	}
	return application.PersonCredentials{
		Person:       toApplicationPerson(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *personAdapter) ListPeople(ctx context.Context) ([]application.Person, error) {
	models, err := a.repo.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	people := make([]application.Person, 0, len(models))
	for _, model := range models {
		people = append(people, toApplicationPerson(model))
	}
	return people, nil
}

type eventAdapter struct {
	repo persistence.EventRepository
}

func newEventAdapter(repo persistence.EventRepository) *eventAdapter {
	return &eventAdapter{repo: repo}
}

func (a *eventAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventAdapter) ListEvents(ctx context.Context, filter application.EventListFilter) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{
		Visibility: string(filter.Visibility),
		CreatorID:  filter.CreatorID,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func (a *eventAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

type attendanceAdapter struct {
	repo persistence.AttendanceRepository
}

func newAttendanceAdapter(repo persistence.AttendanceRepository) *attendanceAdapter {
	return &attendanceAdapter{repo: repo}
}

func (a *attendanceAdapter) CreateAttendance(ctx context.Context, attendance application.Attendance) (application.Attendance, error) {
	if err := a.repo.CreateAttendance(ctx, persistence.Attendance(attendance)); err != nil {
		return application.Attendance{}, err
	}
	stored, err := a.repo.GetAttendance(ctx, attendance.ID)
	if err != nil {
		return application.Attendance{}, err
	}
	return application.Attendance(stored), nil
}

func (a *attendanceAdapter) GetAttendance(ctx context.Context, id string) (application.Attendance, error) {
	stored, err := a.repo.GetAttendance(ctx, id)
	if err != nil {
		return application.Attendance{}, err
	}
	return application.Attendance(stored), nil
}

func (a *attendanceAdapter) GetAttendanceForPerson(ctx context.Context, personID, eventID string) (application.Attendance, error) {
	stored, err := a.repo.GetAttendanceForPerson(ctx, personID, eventID)
	if err != nil {
		return application.Attendance{}, err
	}
	return application.Attendance(stored), nil
}

func (a *attendanceAdapter) ListAttendancesForEvent(ctx context.Context, eventID string) ([]application.Attendance, error) {
	models, err := a.repo.ListAttendancesForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	attendances := make([]application.Attendance, 0, len(models))
	for _, model := range models {
		attendances = append(attendances, application.Attendance(model))
	}
	return attendances, nil
}

func (a *attendanceAdapter) CountAttendancesForEvent(ctx context.Context, eventID string) (int, error) {
	return a.repo.CountAttendancesForEvent(ctx, eventID)
}

func (a *attendanceAdapter) DeleteAttendance(ctx context.Context, id string) error {
	return a.repo.DeleteAttendance(ctx, id)
}

type sessionAdapter struct {
	repo persistence.SessionRepository
}

func newSessionAdapter(repo persistence.SessionRepository) *sessionAdapter {
	return &sessionAdapter{repo: repo}
}

func (a *sessionAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, persistence.Session(session)); err != nil {
		return application.Session{}, err
	}
	stored, err := a.repo.GetSession(ctx, session.Token)
	if err != nil {
		return application.Session{}, err
	}
	return application.Session(stored), nil
}

func (a *sessionAdapter) GetSessionByToken(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return application.Session(stored), nil
}

func (a *sessionAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	return a.repo.RevokeSession(ctx, token, revokedAt)
}

func (a *sessionAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistencePerson(person application.Person, passwordHash string) persistence.Person {
	return persistence.Person{
		ID:              person.ID,
		Email:           person.Email,
		DisplayName:     person.DisplayName,
		PasswordHash:    passwordHash,
		Role:            string(person.Role),
		CanCreateEvents: person.CanCreateEvents,
		CreatedAt:       person.CreatedAt,
		UpdatedAt:       person.UpdatedAt,
	}
}

func toApplicationPerson(person persistence.Person) application.Person {
	return application.Person{
		ID:              person.ID,
		Email:           person.Email,
		DisplayName:     person.DisplayName,
		Role:            application.Role(person.Role),
		CanCreateEvents: person.CanCreateEvents,
		Guest:           person.IsGuest(),
		CreatedAt:       person.CreatedAt,
		UpdatedAt:       person.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:          event.ID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		ImageURL:    event.ImageURL,
		Address:     event.Address,
		City:        event.City,
		Category:    event.Category,
		TicketURL:   event.TicketURL,
		Visibility:  string(event.Visibility),
		Start:       event.Start,
		End:         event.End,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toApplicationEvent(event persistence.Event) application.Event {
	return application.Event{
		ID:          event.ID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		ImageURL:    event.ImageURL,
		Address:     event.Address,
		City:        event.City,
		Category:    event.Category,
		TicketURL:   event.TicketURL,
		Visibility:  application.Visibility(event.Visibility),
		Start:       event.Start,
		End:         event.End,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}
