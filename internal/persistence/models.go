package persistence

import "time"

// Role identifies the privilege level stored for a person.
const (
	RoleStandard = "standard"
	RoleAdmin    = "admin"
)

// Visibility values stored for events.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Person represents anyone who can attend or create events. Guests carry an
// empty PasswordHash and a synthetic, unique email.
type Person struct {
	ID              string
	Email           string
	DisplayName     string
	PasswordHash    string
	Role            string
	CanCreateEvents bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsGuest reports whether the person was issued as a credential-less guest.
func (p Person) IsGuest() bool {
	return p.PasswordHash == ""
}

// Event represents a published event. CreatorID is immutable once set.
type Event struct {
	ID          string
	CreatorID   string
	Title       string
	Description string
	ImageURL    *string
	Address     *string
	City        *string
	Category    *string
	TicketURL   *string
	Visibility  string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendance records that a person intends to attend an event. Rows are owned
// by the event they reference and are removed with it.
type Attendance struct {
	ID        string
	PersonID  string
	EventID   string
	CreatedAt time.Time
}

// Session represents an authentication session persisted for a person.
type Session struct {
	ID        string
	PersonID  string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
