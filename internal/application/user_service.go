package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/event-attendance/internal/persistence"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// PersonDirectory captures the persistence interactions for person accounts.
type PersonDirectory interface {
	CreatePerson(ctx context.Context, credentials PersonCredentials) (Person, error)
	UpdatePerson(ctx context.Context, person Person) (Person, error)
	GetPerson(ctx context.Context, id string) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
}

// UserService owns person registration, self-service profile updates and the
// admin-only event-creation toggle.
type UserService struct {
	people      PersonDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for person account operations.
func NewUserService(people PersonDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		people:      people,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates an authenticated account. New accounts start with the
// standard role and without the event-creation permission.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (person Person, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.people == nil {
		err = fmt.Errorf("person directory not configured")
		return
	}

	logger := s.loggerWith(ctx, "Register")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("person_id", person.ID).InfoContext(ctx, "person registered")
	}()

	if err = validateRegistration(params); err != nil {
		return
	}

	var hash string
	hash, err = CreatePasswordHash(params.Password, DefaultArgon2idParams)
	if err != nil {
		return
	}

	at := s.now()
	person, err = s.people.CreatePerson(ctx, PersonCredentials{
		Person: Person{
			ID:              s.idGenerator(),
			Email:           strings.ToLower(strings.TrimSpace(params.Email)),
			DisplayName:     NormalizeDisplayName(params.DisplayName),
			Role:            RoleStandard,
			CanCreateEvents: false,
			CreatedAt:       at,
			UpdatedAt:       at,
		},
		PasswordHash: hash,
	})
	if err != nil {
		err = mapUserRepoError(err)
	}
	return
}

// Rename updates the caller's own display name.
func (s *UserService) Rename(ctx context.Context, principal Principal, name string) (Person, error) {
	if s == nil {
		return Person{}, fmt.Errorf("UserService is nil")
	}
	if s.people == nil {
		return Person{}, fmt.Errorf("person directory not configured")
	}
	if !principal.Authenticated {
		return Person{}, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Rename", "person_id", principal.PersonID)

	if strings.TrimSpace(name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		logger.ErrorContext(ctx, "rename failed", "error", vErr, "error_kind", ErrorKind(vErr))
		return Person{}, vErr
	}

	person, err := s.people.GetPerson(ctx, principal.PersonID)
	if err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "rename failed", "error", err, "error_kind", ErrorKind(err))
		return Person{}, err
	}

	person.DisplayName = NormalizeDisplayName(name)
	person.UpdatedAt = s.now()

	updated, err := s.people.UpdatePerson(ctx, person)
	if err != nil {
		err = mapUserRepoError(err)
		logger.ErrorContext(ctx, "rename failed", "error", err, "error_kind", ErrorKind(err))
		return Person{}, err
	}

	logger.InfoContext(ctx, "person renamed")
	return updated, nil
}

// Get returns a single person by id.
func (s *UserService) Get(ctx context.Context, id string) (Person, error) {
	if s == nil {
		return Person{}, fmt.Errorf("UserService is nil")
	}
	if s.people == nil {
		return Person{}, fmt.Errorf("person directory not configured")
	}
	person, err := s.people.GetPerson(ctx, id)
	if err != nil {
		return Person{}, mapUserRepoError(err)
	}
	return person, nil
}

// List returns every person. Only admins may call it; the caller's role is
// reloaded from storage rather than trusted from the principal.
func (s *UserService) List(ctx context.Context, principal Principal) ([]Person, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.people == nil {
		return nil, fmt.Errorf("person directory not configured")
	}
	if !principal.Authenticated {
		return nil, ErrUnauthenticated
	}

	actor, err := s.people.GetPerson(ctx, principal.PersonID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	return people, nil
}

// SetCreatePermission toggles whether the target person may create events.
// Admin only, and never on the admin's own account.
func (s *UserService) SetCreatePermission(ctx context.Context, params SetCreatePermissionParams) (person Person, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.people == nil {
		err = fmt.Errorf("person directory not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetCreatePermission",
		"person_id", params.Principal.PersonID,
		"target_person_id", params.TargetPersonID,
		"can_create_events", params.CanCreateEvents,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "permission toggle failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "create permission toggled")
	}()

	if !params.Principal.Authenticated {
		err = ErrUnauthenticated
		return
	}

	var actor Person
	actor, err = s.people.GetPerson(ctx, params.Principal.PersonID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}
	if !CanToggleCreatePermission(actor, params.TargetPersonID) {
		err = ErrUnauthorized
		return
	}

	var target Person
	target, err = s.people.GetPerson(ctx, params.TargetPersonID)
	if err != nil {
		err = mapUserRepoError(err)
		return
	}

	target.CanCreateEvents = params.CanCreateEvents
	target.UpdatedAt = s.now()

	person, err = s.people.UpdatePerson(ctx, target)
	if err != nil {
		err = mapUserRepoError(err)
	}
	return
}

func validateRegistration(params RegisterParams) error {
	vErr := &ValidationError{}

	email := strings.TrimSpace(params.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		vErr.add("email", "email is not valid")
	}

	if len(params.Password) < MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if strings.TrimSpace(params.DisplayName) == "" {
		vErr.add("name", "name is required")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func mapUserRepoError(err error) error {
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
