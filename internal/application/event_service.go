package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/event-attendance/internal/persistence"
)

// Limits on event metadata fields.
const (
	MaxEventTitleLength       = 80
	MaxEventDescriptionLength = 800
)

// EventListFilter narrows Browse results.
type EventListFilter struct {
	Visibility Visibility
	CreatorID  string
}

// EventRepository captures the persistence interactions for events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventListFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// AttendanceLister captures the attendance reads needed for event detail.
type AttendanceLister interface {
	ListAttendancesForEvent(ctx context.Context, eventID string) ([]Attendance, error)
	CountAttendancesForEvent(ctx context.Context, eventID string) (int, error)
}

// EventService owns event publishing. Creation is gated on a per-person
// permission re-read from storage at call time, never trusted from the
// principal.
type EventService struct {
	events      EventRepository
	attendances AttendanceLister
	people      PersonEditor
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for event operations.
func NewEventService(events EventRepository, attendances AttendanceLister, people PersonEditor, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		attendances: attendances,
		people:      people,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create publishes a new event owned by the authenticated caller.
func (s *EventService) Create(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil || s.people == nil {
		err = fmt.Errorf("event service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "Create", "person_id", params.Principal.PersonID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	if !params.Principal.Authenticated {
		err = ErrUnauthenticated
		return
	}

	var creator Person
	creator, err = s.people.GetPerson(ctx, params.Principal.PersonID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	if !creator.CanCreateEvents {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if err = validateEventInput(&input); err != nil {
		return
	}

	at := s.now()
	event, err = s.events.CreateEvent(ctx, Event{
		ID:          s.idGenerator(),
		CreatorID:   creator.ID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Address:     input.Address,
		City:        input.City,
		Category:    input.Category,
		TicketURL:   input.TicketURL,
		Visibility:  input.Visibility,
		Start:       input.Start,
		End:         input.End,
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

// Update edits an event's metadata. Only the creator may edit; ownership
// never changes.
func (s *EventService) Update(ctx context.Context, params UpdateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "event_id", params.EventID, "person_id", params.Principal.PersonID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	if !params.Principal.Authenticated {
		err = ErrUnauthenticated
		return
	}

	var existing Event
	existing, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	if !CanEditOrDeleteEvent(params.Principal.PersonID, existing) {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if err = validateEventInput(&input); err != nil {
		return
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.ImageURL = input.ImageURL
	existing.Address = input.Address
	existing.City = input.City
	existing.Category = input.Category
	existing.TicketURL = input.TicketURL
	existing.Visibility = input.Visibility
	existing.Start = input.Start
	existing.End = input.End
	existing.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, existing)
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

// Delete removes an event. Attendance rows for the event go with it; the
// person identities behind them are untouched.
func (s *EventService) Delete(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "event_id", eventID, "person_id", principal.PersonID)

	if !principal.Authenticated {
		logger.ErrorContext(ctx, "event deletion failed", "error", ErrUnauthenticated, "error_kind", ErrorKind(ErrUnauthenticated))
		return ErrUnauthenticated
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		logger.ErrorContext(ctx, "event deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !CanEditOrDeleteEvent(principal.PersonID, event) {
		logger.ErrorContext(ctx, "event deletion failed", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		err = mapEventRepoError(err)
		logger.ErrorContext(ctx, "event deletion failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// Get returns a single event without its attendee roster.
func (s *EventService) Get(ctx context.Context, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return event, nil
}

// GetDetails returns an event together with its creator's name and the
// attendee roster in join order.
func (s *EventService) GetDetails(ctx context.Context, eventID string) (details EventDetails, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil || s.attendances == nil || s.people == nil {
		err = fmt.Errorf("event service not fully configured")
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	var creator Person
	creator, err = s.people.GetPerson(ctx, event.CreatorID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	var attendances []Attendance
	attendances, err = s.attendances.ListAttendancesForEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	attendees := make([]Attendee, 0, len(attendances))
	for _, attendance := range attendances {
		person, lookupErr := s.people.GetPerson(ctx, attendance.PersonID)
		if lookupErr != nil {
			err = mapEventRepoError(lookupErr)
			return
		}
		attendees = append(attendees, Attendee{
			Attendance: attendance,
			PersonName: person.DisplayName,
			Guest:      person.Guest,
		})
	}

	details = EventDetails{Event: event, CreatorName: creator.DisplayName, Attendees: attendees}
	return
}

// Browse lists public events ordered by start time. Authenticated callers
// may instead list their own events regardless of visibility by setting
// Mine.
func (s *EventService) Browse(ctx context.Context, principal Principal, mine bool) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}

	filter := EventListFilter{Visibility: VisibilityPublic}
	if mine {
		if !principal.Authenticated {
			return nil, ErrUnauthenticated
		}
		filter = EventListFilter{CreatorID: principal.PersonID}
	}

	events, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	return events, nil
}

// AttendeeCount reports how many people are attending an event.
func (s *EventService) AttendeeCount(ctx context.Context, eventID string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("EventService is nil")
	}
	if s.attendances == nil {
		return 0, fmt.Errorf("attendance repository not configured")
	}
	count, err := s.attendances.CountAttendancesForEvent(ctx, eventID)
	if err != nil {
		return 0, mapEventRepoError(err)
	}
	return count, nil
}

func validateEventInput(input *EventInput) error {
	vErr := &ValidationError{}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		vErr.add("title", "title is required")
	} else if utf8.RuneCountInString(input.Title) > MaxEventTitleLength {
		vErr.add("title", fmt.Sprintf("title must be at most %d characters", MaxEventTitleLength))
	}

	input.Description = strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(input.Description) > MaxEventDescriptionLength {
		vErr.add("description", fmt.Sprintf("description must be at most %d characters", MaxEventDescriptionLength))
	}

	switch input.Visibility {
	case VisibilityPublic:
		if input.City == nil || strings.TrimSpace(*input.City) == "" {
			vErr.add("city", "city is required for public events")
		}
		if input.Category == nil || strings.TrimSpace(*input.Category) == "" {
			vErr.add("category", "category is required for public events")
		}
	case VisibilityPrivate:
	default:
		vErr.add("visibility", "visibility must be public or private")
	}

	if input.Start.IsZero() {
		vErr.add("start", "start time is required")
	}
	if !input.End.IsZero() && !input.Start.IsZero() && input.End.Before(input.Start) {
		vErr.add("end", "end time must not be before start time")
	}

	for field, raw := range map[string]*string{
		"imageUrl":  input.ImageURL,
		"ticketUrl": input.TicketURL,
	} {
		if raw == nil || strings.TrimSpace(*raw) == "" {
			continue
		}
		parsed, parseErr := url.Parse(*raw)
		if parseErr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			vErr.add(field, "must be an absolute http or https URL")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return err
}
