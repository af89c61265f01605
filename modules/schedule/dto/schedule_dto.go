package dto

import "go-booking-assistant/modules/schedule/entity"

// UpsertDayRequest creates or replaces the rules for one day of week.
type UpsertDayRequest struct {
	Slots    []entity.SlotRule `json:"slots"`
	IsActive *bool             `json:"isActive,omitempty"`
}

type DayScheduleResponse struct {
	ID            string                `json:"id"`
	DayOfWeek     int                   `json:"dayOfWeek"`
	DayName       string                `json:"dayName"`
	Slots         []entity.SlotRule     `json:"slots"`
	DateOverrides []entity.DateOverride `json:"dateOverrides,omitempty"`
	IsActive      bool                  `json:"isActive"`
}

type WeekScheduleResponse struct {
	TimeSlots []DayScheduleResponse `json:"timeSlots"`
	TotalDays int                   `json:"totalDays"`
}

type DateOverrideRequest struct {
	Date        string            `json:"date"`
	IsAvailable *bool             `json:"isAvailable"`
	CustomSlots []entity.SlotRule `json:"customSlots,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

type CheckAvailabilityRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type CheckAvailabilityResponse struct {
	IsAvailable   bool   `json:"isAvailable"`
	Date          string `json:"date"`
	RequestedTime string `json:"requestedTime"`
	MatchingDay   string `json:"matchingDay,omitempty"`
}

type AvailabilityRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type DayAvailability struct {
	Date        string            `json:"date"`
	DayName     string            `json:"dayName"`
	IsAvailable bool              `json:"isAvailable"`
	Slots       []entity.SlotRule `json:"slots"`
}

type AvailabilityRangeResponse struct {
	Availability []DayAvailability `json:"availability"`
	DateRange    struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
}
