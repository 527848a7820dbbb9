package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

// EventLookup captures the event read needed by the attendance service.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (Event, error)
}

// AttendanceRepository captures the persistence interactions for RSVP rows.
// CreateAttendance must surface the storage unique-constraint violation for
// (person, event) as persistence.ErrDuplicate; the service translates it to
// ErrAlreadyAttending. There is no read-then-write existence check anywhere.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance Attendance) (Attendance, error)
	GetAttendance(ctx context.Context, id string) (Attendance, error)
	GetAttendanceForPerson(ctx context.Context, personID, eventID string) (Attendance, error)
	DeleteAttendance(ctx context.Context, id string) error
}

// PersonEditor captures the person reads and writes needed for guest renames.
type PersonEditor interface {
	GetPerson(ctx context.Context, id string) (Person, error)
	UpdatePerson(ctx context.Context, person Person) (Person, error)
}

// AttendanceService is the RSVP state machine. A (person, event) pair is
// either attending or not; joins are time-gated, withdrawals never are.
// Failures are final: the service performs no internal retries.
type AttendanceService struct {
	attendances AttendanceRepository
	events      EventLookup
	people      PersonEditor
	identities  *IdentityResolver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for attendance operations.
func NewAttendanceService(attendances AttendanceRepository, events EventLookup, people PersonEditor, identities *IdentityResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		attendances: attendances,
		events:      events,
		people:      people,
		identities:  identities,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// Join records that the acting person will attend the event. Anonymous
// callers must supply a guest name; a fresh guest identity is issued only
// after every other guard has passed. The storage unique constraint is the
// sole arbiter of duplicate joins.
func (s *AttendanceService) Join(ctx context.Context, params JoinEventParams) (result JoinEventResult, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.attendances == nil || s.events == nil || s.identities == nil {
		err = fmt.Errorf("attendance service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "Join",
		"event_id", params.EventID,
		"authenticated", params.Principal.Authenticated,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "join failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"attendance_id", result.Attendance.ID,
			"person_id", result.Attendance.PersonID,
		).InfoContext(ctx, "joined event")
	}()

	if s.identities.NeedsGuestName(params.Principal, params.GuestName) {
		err = ErrGuestNameRequired
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		return
	}

	if params.Principal.Authenticated && !CanRSVP(params.Principal.PersonID, event) {
		err = ErrUnauthorized
		return
	}

	if !IsUpcoming(event, s.now()) {
		err = ErrEventEnded
		return
	}

	var person Person
	person, err = s.identities.Resolve(ctx, params.Principal, params.GuestName)
	if err != nil {
		return
	}

	attendance := Attendance{
		ID:        s.idGenerator(),
		PersonID:  person.ID,
		EventID:   event.ID,
		CreatedAt: s.now(),
	}

	var persisted Attendance
	persisted, err = s.attendances.CreateAttendance(ctx, attendance)
	if err != nil {
		err = mapAttendanceRepoError(err)
		return
	}

	result = JoinEventResult{Attendance: persisted, Person: person}
	return
}

// LeaveSelf withdraws the authenticated caller's own attendance. Withdrawal
// has no time restriction.
func (s *AttendanceService) LeaveSelf(ctx context.Context, principal Principal, eventID string) error {
	if s == nil {
		return fmt.Errorf("AttendanceService is nil")
	}
	if s.attendances == nil {
		return fmt.Errorf("attendance repository not configured")
	}
	if !principal.Authenticated {
		return ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "LeaveSelf", "event_id", eventID, "person_id", principal.PersonID)

	attendance, err := s.attendances.GetAttendanceForPerson(ctx, principal.PersonID, eventID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		logger.ErrorContext(ctx, "self leave failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if !CanSelfLeave(principal.PersonID, attendance) {
		logger.ErrorContext(ctx, "self leave failed", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.attendances.DeleteAttendance(ctx, attendance.ID); err != nil {
		err = mapAttendanceRepoError(err)
		logger.ErrorContext(ctx, "self leave failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("attendance_id", attendance.ID).InfoContext(ctx, "left event")
	return nil
}

// Remove deletes a specific attendance row. The row must belong to the stated
// event. Authenticated callers must either own the row or be the event's
// creator (authority reloaded from storage). Anonymous callers are permitted:
// possession of the attendance id is the credential an anonymous attendee
// retained from their own join.
func (s *AttendanceService) Remove(ctx context.Context, params RemoveAttendanceParams) error {
	if s == nil {
		return fmt.Errorf("AttendanceService is nil")
	}
	if s.attendances == nil || s.events == nil {
		return fmt.Errorf("attendance service not fully configured")
	}

	logger := s.loggerWith(ctx, "Remove",
		"event_id", params.EventID,
		"attendance_id", params.AttendanceID,
		"authenticated", params.Principal.Authenticated,
	)

	attendance, err := s.attendances.GetAttendance(ctx, params.AttendanceID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		logger.ErrorContext(ctx, "attendance removal failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if attendance.EventID != params.EventID {
		// A row from another event is indistinguishable from a missing one.
		logger.ErrorContext(ctx, "attendance removal failed", "error", ErrNotFound, "error_kind", ErrorKind(ErrNotFound))
		return ErrNotFound
	}

	if params.Principal.Authenticated && !CanSelfLeave(params.Principal.PersonID, attendance) {
		event, err := s.events.GetEvent(ctx, params.EventID)
		if err != nil {
			err = mapAttendanceRepoError(err)
			logger.ErrorContext(ctx, "attendance removal failed", "error", err, "error_kind", ErrorKind(err))
			return err
		}
		if !CanManageGuest(params.Principal.PersonID, event, attendance) {
			logger.ErrorContext(ctx, "attendance removal failed", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
			return ErrUnauthorized
		}
	}

	if err := s.attendances.DeleteAttendance(ctx, attendance.ID); err != nil {
		err = mapAttendanceRepoError(err)
		logger.ErrorContext(ctx, "attendance removal failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With("person_id", attendance.PersonID).InfoContext(ctx, "attendance removed")
	return nil
}

// RenameGuest lets an event creator change an attendee's display name. The
// rename applies to the person identity itself, not just within the event.
// The target must hold an attendance row for the stated event.
func (s *AttendanceService) RenameGuest(ctx context.Context, params RenameGuestParams) (person Person, err error) {
	if s == nil {
		err = fmt.Errorf("AttendanceService is nil")
		return
	}
	if s.attendances == nil || s.events == nil || s.people == nil {
		err = fmt.Errorf("attendance service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "RenameGuest",
		"event_id", params.EventID,
		"target_person_id", params.TargetPersonID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "guest rename failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "guest renamed")
	}()

	if !params.Principal.Authenticated {
		err = ErrUnauthenticated
		return
	}

	if strings.TrimSpace(params.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		return
	}

	var attendance Attendance
	attendance, err = s.attendances.GetAttendanceForPerson(ctx, params.TargetPersonID, params.EventID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		return
	}

	if !CanManageGuest(params.Principal.PersonID, event, attendance) {
		err = ErrUnauthorized
		return
	}

	var target Person
	target, err = s.people.GetPerson(ctx, params.TargetPersonID)
	if err != nil {
		err = mapAttendanceRepoError(err)
		return
	}

	target.DisplayName = NormalizeDisplayName(params.Name)
	target.UpdatedAt = s.now()

	person, err = s.people.UpdatePerson(ctx, target)
	if err != nil {
		err = mapAttendanceRepoError(err)
	}
	return
}

func mapAttendanceRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyAttending
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		// The event vanished between the guard read and the insert.
		return ErrNotFound
	}
	return err
}
