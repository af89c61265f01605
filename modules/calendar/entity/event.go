package entity

import "time"

// CalendarEvent is an event read from the external calendar. The
// provider owns these; this system only inserts and deletes the ones
// it created.
type CalendarEvent struct {
	ID          string            `json:"id"`
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status,omitempty"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Private     map[string]string `json:"private,omitempty"`
}

// Overlaps reports half-open interval overlap with [start, end).
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

type EventAttendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// EventInput is the payload for inserting a calendar event.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []EventAttendee
	Private     map[string]string
}
