package dto

import (
	"time"

	"go-booking-assistant/modules/booking/entity"
)

type CreateBookingRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Platform       string `json:"platform"`
	Summary        string `json:"summary"`
	Description    string `json:"description,omitempty"`
	// RFC3339 with the business's UTC offset, e.g. 2025-12-29T09:00:00+05:00.
	Start         string `json:"start"`
	End           string `json:"end"`
	AttendeeEmail string `json:"attendee_email,omitempty"`
	AttendeeName  string `json:"attendee_name,omitempty"`
}

type CreateBookingResponse struct {
	BookingID string    `json:"booking_id"`
	EventID   string    `json:"event_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type CancelBookingResponse struct {
	Status      string     `json:"status"`
	EventID     string     `json:"event_id"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type ListBookingsRequest struct {
	ConversationID string `query:"conversationId"`
	SenderID       string `query:"senderId"`
	Platform       string `query:"platform"`
}

type ListBookingsResponse struct {
	Bookings []entity.Booking `json:"bookings"`
	Total    int              `json:"total"`
}
