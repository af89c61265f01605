package service

import (
	"context"
	"sort"
	"time"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/modules/availability/dto"
	calendarentity "go-booking-assistant/modules/calendar/entity"
	calendarservice "go-booking-assistant/modules/calendar/service"
	"go-booking-assistant/modules/schedule/entity"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type AvailabilityService interface {
	// Resolve computes the open appointment slots for a business over a
	// date range, merging the weekly schedule with the owner's live
	// calendar. One gateway round trip covers the whole range.
	Resolve(ctx context.Context, businessID uuid.UUID, startDate, endDate string) (*dto.AvailableSlotsResponse, error)
}

type availabilityService struct {
	schedules scheduleservice.ScheduleService
	gateway   calendarservice.Gateway
	now       func() time.Time
}

func NewAvailabilityService(schedules scheduleservice.ScheduleService, gateway calendarservice.Gateway) AvailabilityService {
	return &availabilityService{
		schedules: schedules,
		gateway:   gateway,
		now:       time.Now,
	}
}

// NewAvailabilityServiceWithClock pins the clock. Tests only.
func NewAvailabilityServiceWithClock(schedules scheduleservice.ScheduleService, gateway calendarservice.Gateway, now func() time.Time) AvailabilityService {
	return &availabilityService{schedules: schedules, gateway: gateway, now: now}
}

func advanceBookingDays() int {
	if cfg, ok := config.GetSafe(); ok && cfg.Booking.AdvanceBookingDays > 0 {
		return cfg.Booking.AdvanceBookingDays
	}
	return constants.DefaultAdvanceBookingDays
}

func (s *availabilityService) Resolve(ctx context.Context, businessID uuid.UUID, startDate, endDate string) (*dto.AvailableSlotsResponse, error) {
	business, err := s.schedules.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	loc, err := business.Location()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Business timezone is invalid", err)
	}

	today := s.now().In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if startDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid start date format. Use YYYY-MM-DD format", nil)
		}
		start = parsed
	}
	end := start.AddDate(0, 0, advanceBookingDays())
	if endDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid end date format. Use YYYY-MM-DD format", nil)
		}
		end = parsed
	}
	if end.Before(start) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "End date must not be before start date", nil)
	}

	schedules, err := s.schedules.WeekFor(ctx, businessID)
	if err != nil {
		return nil, err
	}

	// One range query for the whole window instead of per-day calls.
	rangeEnd := end.AddDate(0, 0, 1)
	events, err := s.gateway.ListEvents(ctx, business.UserID, start, rangeEnd)
	if err != nil {
		return nil, err
	}

	var open []entity.AppointmentSlot
	for date := start; date.Before(rangeEnd); date = date.AddDate(0, 0, 1) {
		day := scheduleservice.ResolveDay(schedules, date)
		if len(day.Rules) == 0 {
			continue
		}
		for _, slot := range scheduleservice.GenerateSlots(day.Rules, date, loc) {
			if slot.Start.Before(s.now()) {
				continue
			}
			slot, blocked := applyEvents(slot, events)
			if !blocked && slot.Open() {
				open = append(open, slot)
			}
		}
	}

	sort.Slice(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })

	logger.Info("AvailabilityService:Resolve:Success",
		"business_id", businessID,
		"start", start.Format(dateLayout), "end", end.Format(dateLayout),
		"events", len(events), "open_slots", len(open))

	resp := &dto.AvailableSlotsResponse{
		BusinessID: businessID.String(),
		Timezone:   loc.String(),
		Slots:      open,
		TotalOpen:  len(open),
	}
	resp.DateRange.Start = start.Format(dateLayout)
	resp.DateRange.End = end.Format(dateLayout)
	if resp.Slots == nil {
		resp.Slots = []entity.AppointmentSlot{}
	}
	return resp, nil
}

// applyEvents folds the calendar events into one slot: booking events
// consume capacity, anything else blocks the slot outright.
func applyEvents(slot entity.AppointmentSlot, events []calendarentity.CalendarEvent) (entity.AppointmentSlot, bool) {
	for _, ev := range events {
		if !ev.Overlaps(slot.Start, slot.End) {
			continue
		}
		if calendarservice.IsBookingEvent(ev) {
			slot.CurrentBookings++
			continue
		}
		return slot, true
	}
	return slot, false
}
