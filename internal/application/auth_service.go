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

// DefaultSessionTTL applies when no explicit session lifetime is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

// CredentialStore captures the credential read needed for login.
type CredentialStore interface {
	GetPersonByEmail(ctx context.Context, email string) (PersonCredentials, error)
	GetPerson(ctx context.Context, id string) (Person, error)
}

// SessionStore captures the persistence interactions for sessions. Sessions
// are addressed by their opaque token.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService owns login, session validation and logout. Sessions are opaque
// bearer tokens; guests never log in because their stored hash is the empty
// sentinel, which verifies against nothing.
type AuthService struct {
	people         CredentialStore
	sessions       SessionStore
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations.
func NewAuthService(people CredentialStore, sessions SessionStore, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		people:         people,
		sessions:       sessions,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies credentials and issues a fresh session. Lookup
// failures and bad passwords collapse into the same error so callers cannot
// probe which emails exist.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.people == nil || s.sessions == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("person_id", result.Person.ID).InfoContext(ctx, "authenticated")
	}()

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var credentials PersonCredentials
	credentials, err = s.people.GetPersonByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = VerifyPassword(credentials.PasswordHash, params.Password); err != nil {
		return
	}

	at := s.now()
	var session Session
	session, err = s.sessions.CreateSession(ctx, Session{
		ID:        s.idGenerator(),
		PersonID:  credentials.Person.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: at.Add(s.sessionTTL),
		CreatedAt: at,
		UpdatedAt: at,
	})
	if err != nil {
		return
	}

	result = AuthenticateResult{Person: credentials.Person, Session: session}
	return
}

// ValidateSession resolves a bearer token to the person it belongs to.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Person, Session, error) {
	if s == nil {
		return Person{}, Session{}, fmt.Errorf("AuthService is nil")
	}
	if s.people == nil || s.sessions == nil {
		return Person{}, Session{}, fmt.Errorf("auth service not fully configured")
	}
	if token == "" {
		return Person{}, Session{}, ErrUnauthenticated
	}

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return Person{}, Session{}, ErrUnauthenticated
		}
		return Person{}, Session{}, err
	}
	if session.RevokedAt != nil {
		return Person{}, Session{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Person{}, Session{}, ErrSessionExpired
	}

	person, err := s.people.GetPerson(ctx, session.PersonID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return Person{}, Session{}, ErrUnauthenticated
		}
		return Person{}, Session{}, err
	}

	return person, session, nil
}

// Logout revokes the session behind the given token. Revoking an unknown or
// already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}
	if token == "" {
		return nil
	}

	logger := s.loggerWith(ctx, "Logout")

	if err := s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "logged out")
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}
