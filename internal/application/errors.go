package application

import "errors"

var (
	// ErrUnauthenticated is returned when an anonymous caller attempts an
	// action that requires a signed-in person.
	ErrUnauthenticated = errors.New("application: unauthenticated")
	// ErrGuestNameRequired signals that an anonymous caller must supply a
	// display name before the guest join can proceed. It is an expected
	// intermediate state of the anonymous RSVP flow, not a validation failure.
	ErrGuestNameRequired = errors.New("application: guest name required")
	// ErrUnauthorized is returned when the acting person lacks permission for
	// an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyAttending is returned when a join collides with an existing
	// attendance row for the same (person, event) pair.
	ErrAlreadyAttending = errors.New("application: already attending")
	// ErrAlreadyExists is returned when a unique attribute collides, such as a
	// signup with a taken email.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrEventEnded is returned when a join targets an event that is no longer
	// upcoming.
	ErrEventEnded = errors.New("application: event ended")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
