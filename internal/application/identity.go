package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/event-attendance/internal/persistence"
)

// PersonLookup exposes the single read the resolver needs.
type PersonLookup interface {
	GetPerson(ctx context.Context, id string) (Person, error)
}

// GuestMinting is satisfied by GuestIssuer.
type GuestMinting interface {
	Issue(ctx context.Context, name string) (Person, error)
}

// IdentityResolver turns an inbound actor context into a concrete person to
// act as. Authenticated callers resolve to their session's person; anonymous
// callers with a supplied name receive a freshly issued guest identity;
// anonymous callers without a name receive the needs-name signal so the
// client can prompt and retry.
type IdentityResolver struct {
	people PersonLookup
	guests GuestMinting
}

// NewIdentityResolver wires dependencies for identity resolution.
func NewIdentityResolver(people PersonLookup, guests GuestMinting) *IdentityResolver {
	return &IdentityResolver{people: people, guests: guests}
}

// NeedsGuestName reports whether an anonymous caller must supply a display
// name before resolution can proceed. It is pure and performs no storage
// access, so callers can check it before running other guards.
func (r *IdentityResolver) NeedsGuestName(principal Principal, suppliedName string) bool {
	return !principal.Authenticated && strings.TrimSpace(suppliedName) == ""
}

// Resolve produces the person the caller acts as. For anonymous callers this
// mints a new guest identity, so it must only be invoked once all other
// guards have passed.
func (r *IdentityResolver) Resolve(ctx context.Context, principal Principal, suppliedName string) (Person, error) {
	if r == nil {
		return Person{}, fmt.Errorf("IdentityResolver is nil")
	}

	if principal.Authenticated {
		if r.people == nil {
			return Person{}, fmt.Errorf("person directory not configured")
		}
		person, err := r.people.GetPerson(ctx, principal.PersonID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
				// The session points at a person that no longer exists.
				return Person{}, ErrUnauthenticated
			}
			return Person{}, err
		}
		return person, nil
	}

	if r.NeedsGuestName(principal, suppliedName) {
		return Person{}, ErrGuestNameRequired
	}
	if r.guests == nil {
		return Person{}, fmt.Errorf("guest issuer not configured")
	}
	return r.guests.Issue(ctx, suppliedName)
}
