package application

import "time"

// IsUpcoming reports whether the event has not yet started. Attendance
// creation requires an upcoming event; withdrawal never does.
func IsUpcoming(event Event, now time.Time) bool {
	return now.Before(event.Start)
}
