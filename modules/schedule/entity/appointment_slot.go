package entity

import "time"

// AppointmentSlot is a concrete bookable window on a specific date.
// Computed on every query, never persisted.
type AppointmentSlot struct {
	Date            string    `json:"date"` // YYYY-MM-DD in the business timezone
	SlotName        string    `json:"slotName,omitempty"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration"`
	MaxBookings     int       `json:"maxBookings"`
	CurrentBookings int       `json:"currentBookings"`
}

// Open reports whether the slot still has capacity.
func (s AppointmentSlot) Open() bool {
	return s.CurrentBookings < s.MaxBookings
}

// Overlaps implements half-open interval overlap: [a,b) and [b,c) do
// not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
