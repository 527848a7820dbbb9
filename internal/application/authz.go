package application

// Permission guard predicates. Every function operates on records that were
// freshly loaded from storage by the calling service; none of them trusts a
// caller-asserted role or ownership flag.

// IsEventCreator reports whether the actor owns the event.
func IsEventCreator(actorID string, event Event) bool {
	return actorID != "" && actorID == event.CreatorID
}

// CanEditOrDeleteEvent reports whether the actor may mutate the event. Only
// the creator qualifies; there is no time restriction on edit or delete.
func CanEditOrDeleteEvent(actorID string, event Event) bool {
	return IsEventCreator(actorID, event)
}

// CanManageGuest reports whether the actor may remove or rename an attendee
// of the event. The attendance must belong to the stated event.
func CanManageGuest(actorID string, event Event, attendance Attendance) bool {
	return IsEventCreator(actorID, event) && attendance.EventID == event.ID
}

// CanSelfLeave reports whether the actor owns the attendance row.
func CanSelfLeave(actorID string, attendance Attendance) bool {
	return actorID != "" && actorID == attendance.PersonID
}

// CanToggleCreatePermission reports whether the admin may flip the target's
// create-events flag. An admin may never change their own flag through this
// path.
func CanToggleCreatePermission(admin Person, targetPersonID string) bool {
	return admin.IsAdmin() && admin.ID != targetPersonID
}

// CanRSVP reports whether the actor may join the event. Creators are excluded
// from attending their own events.
func CanRSVP(actorID string, event Event) bool {
	return actorID != event.CreatorID
}
