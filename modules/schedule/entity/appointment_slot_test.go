package entity

import (
	"testing"
	"time"
)

func TestOverlapsHalfOpen(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2025, 12, 29, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(9), at(10), at(9), at(10), true},
		{"contained", at(9), at(12), at(10), at(11), true},
		{"partial", at(9), at(11), at(10), at(12), true},
		{"boundary neighbors", at(9), at(10), at(10), at(11), false},
		{"disjoint", at(9), at(10), at(14), at(15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Symmetry law.
			if rev := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); rev != got {
				t.Errorf("Overlaps not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestAppointmentSlotOpen(t *testing.T) {
	slot := AppointmentSlot{MaxBookings: 2}
	if !slot.Open() {
		t.Error("empty slot should be open")
	}
	slot.CurrentBookings = 1
	if !slot.Open() {
		t.Error("slot below capacity should be open")
	}
	slot.CurrentBookings = 2
	if slot.Open() {
		t.Error("full slot should be closed")
	}
}
