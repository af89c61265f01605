package dto

import (
	"go-booking-assistant/modules/schedule/entity"
)

type AvailableSlotsRequest struct {
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

type AvailableSlotsResponse struct {
	BusinessID string `json:"business_id"`
	Timezone   string `json:"timezone"`
	DateRange  struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date_range"`
	// Slots holds only the open slots, in chronological order.
	Slots     []entity.AppointmentSlot `json:"slots"`
	TotalOpen int                      `json:"total_open"`
}
