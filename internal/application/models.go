package application

import "time"

// Role identifies the privilege level of a person.
type Role string

const (
	// RoleStandard is the default role assigned at signup and to guests.
	RoleStandard Role = "standard"
	// RoleAdmin marks administrators who may manage create permissions.
	RoleAdmin Role = "admin"
)

// Visibility controls whether an event is discoverable or link-only.
type Visibility string

const (
	// VisibilityPublic events appear in listings.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate events are reachable only via direct link.
	VisibilityPrivate Visibility = "private"
)

// Principal represents the inbound actor context of a request. Anonymous
// callers carry the zero value. The principal deliberately holds no role or
// permission flags: guards reload authority from storage when deciding.
type Principal struct {
	PersonID      string
	Authenticated bool
}

// Person represents anyone who can attend or create events.
type Person struct {
	ID              string
	Email           string
	DisplayName     string
	Role            Role
	CanCreateEvents bool
	Guest           bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin reports whether the person holds the admin role.
func (p Person) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PersonCredentials models the authentication attributes persisted for a
// person. Guests carry the empty-hash sentinel.
type PersonCredentials struct {
	Person       Person
	PasswordHash string
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string
	Description string
	ImageURL    *string
	Address     *string
	City        *string
	Category    *string
	TicketURL   *string
	Visibility  Visibility
	Start       time.Time
	End         time.Time
}

// Event represents a persisted event.
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
	Visibility  Visibility
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attendance records that a person intends to attend an event.
type Attendance struct {
	ID        string
	PersonID  string
	EventID   string
	CreatedAt time.Time
}

// Attendee pairs an attendance row with the current display name of the
// person it belongs to.
type Attendee struct {
	Attendance Attendance
	PersonName string
	Guest      bool
}

// EventDetails is an event together with its creator name and ordered
// attendee list.
type EventDetails struct {
	Event       Event
	CreatorName string
	Attendees   []Attendee
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// JoinEventParams wraps the data required to join an event. GuestName is only
// consulted for anonymous principals.
type JoinEventParams struct {
	Principal Principal
	EventID   string
	GuestName string
}

// JoinEventResult carries the new attendance row and the display name the
// caller should show. Anonymous callers are expected to retain Attendance.ID
// locally so they can later leave without authenticating.
type JoinEventResult struct {
	Attendance Attendance
	Person     Person
}

// RemoveAttendanceParams identifies a specific attendance row to remove.
type RemoveAttendanceParams struct {
	Principal    Principal
	EventID      string
	AttendanceID string
}

// RenameGuestParams wraps the data required for a creator to rename a guest.
type RenameGuestParams struct {
	Principal      Principal
	EventID        string
	TargetPersonID string
	Name           string
}

// SetCreatePermissionParams wraps the data for the admin-only toggle.
type SetCreatePermissionParams struct {
	Principal       Principal
	TargetPersonID  string
	CanCreateEvents bool
}

// RegisterParams captures the data required to register a person.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// Session represents an authenticated session issued to a person.
type Session struct {
	ID        string
	PersonID  string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a person.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Person  Person
	Session Session
}
