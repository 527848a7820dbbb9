package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// MaxDisplayNameLength caps display names at issuance and rename time.
	MaxDisplayNameLength = 50
	// DefaultGuestName replaces empty or whitespace-only guest names.
	DefaultGuestName = "Guest"
)

// GuestDirectory captures the persistence interaction needed by the issuer.
type GuestDirectory interface {
	CreatePerson(ctx context.Context, creds PersonCredentials) (Person, error)
}

// GuestIssuer mints persistent but credential-less identities for anonymous
// attendees. Issuance is deliberately not idempotent: every call produces a
// fresh person row, and linking repeat visits to a prior identity is left to
// whatever attendance id the client retained.
type GuestIssuer struct {
	people         GuestDirectory
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	emailDomain    string
	logger         *slog.Logger
}

// NewGuestIssuer wires dependencies for guest identity issuance. The token
// generator must produce cryptographically random values; it makes the
// synthetic email practically unique without a lookup.
func NewGuestIssuer(people GuestDirectory, idGenerator, tokenGenerator func() string, now func() time.Time, emailDomain string, logger *slog.Logger) *GuestIssuer {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = idGenerator
	}
	if now == nil {
		now = time.Now
	}
	if emailDomain == "" {
		emailDomain = "guests.local"
	}
	return &GuestIssuer{
		people:         people,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		emailDomain:    emailDomain,
		logger:         defaultLogger(logger),
	}
}

// Issue creates a guest person for the supplied display name and returns the
// new identity.
func (s *GuestIssuer) Issue(ctx context.Context, name string) (person Person, err error) {
	if s == nil {
		err = fmt.Errorf("GuestIssuer is nil")
		return
	}
	if s.people == nil {
		err = fmt.Errorf("person directory not configured")
		return
	}

	displayName := NormalizeDisplayName(name)
	logger := serviceLogger(ctx, s.logger, "GuestIssuer", "Issue")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "guest issuance failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("person_id", person.ID).InfoContext(ctx, "guest identity issued")
	}()

	createdAt := s.now()
	candidate := Person{
		ID:              s.idGenerator(),
		Email:           fmt.Sprintf("guest-%s@%s", s.tokenGenerator(), s.emailDomain),
		DisplayName:     displayName,
		Role:            RoleStandard,
		CanCreateEvents: false,
		Guest:           true,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	// Empty hash is the guest sentinel; it can never authenticate.
	person, err = s.people.CreatePerson(ctx, PersonCredentials{Person: candidate, PasswordHash: ""})
	return
}

// NormalizeDisplayName trims, truncates to the display-name limit, and falls
// back to the guest placeholder when nothing is left.
func NormalizeDisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultGuestName
	}
	runes := []rune(trimmed)
	if len(runes) > MaxDisplayNameLength {
		return string(runes[:MaxDisplayNameLength])
	}
	return trimmed
}
