package entity

import (
	"time"

	"go-booking-assistant/core/entity"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"

	PlatformInstagram = "instagram"
	PlatformWhatsApp  = "whatsapp"
)

// ValidPlatform reports whether p is a supported messaging platform.
func ValidPlatform(p string) bool {
	return p == PlatformInstagram || p == PlatformWhatsApp
}

// Booking is the local record of a confirmed appointment. The external
// calendar event is the source of truth for time; this row carries the
// conversational context the calendar cannot.
type Booking struct {
	entity.BaseEntity
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	BusinessID     uuid.UUID  `db:"business_id" json:"business_id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	Platform       string     `db:"platform" json:"platform"`
	EventID        string     `db:"event_id" json:"event_id"`
	Summary        string     `db:"summary" json:"summary"`
	Description    string     `db:"description" json:"description,omitempty"`
	AttendeeEmail  string     `db:"attendee_email" json:"attendee_email,omitempty"`
	AttendeeName   string     `db:"attendee_name" json:"attendee_name,omitempty"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        time.Time  `db:"end_time" json:"end_time"`
	Status         string     `db:"status" json:"status"`
	CancelledAt    *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsActive() bool {
	return b != nil && b.Status == StatusActive
}
