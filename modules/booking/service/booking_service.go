package service

import (
	"context"
	"fmt"
	"time"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/modules/booking/dto"
	"go-booking-assistant/modules/booking/entity"
	"go-booking-assistant/modules/booking/repository"
	calendarentity "go-booking-assistant/modules/calendar/entity"
	calendarservice "go-booking-assistant/modules/calendar/service"
	scheduleentity "go-booking-assistant/modules/schedule/entity"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type BookingService interface {
	// Commit runs the booking commit protocol: validate, re-check the
	// live calendar for the exact window, insert the external event,
	// persist the local row. Conflicts are expected outcomes, not bugs.
	Commit(ctx context.Context, businessID uuid.UUID, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	// Cancel deletes the external event first; the local row is only
	// flipped to cancelled after the calendar no longer shows the event.
	Cancel(ctx context.Context, businessID uuid.UUID, eventID string) (*dto.CancelBookingResponse, error)
	List(ctx context.Context, businessID uuid.UUID, req *dto.ListBookingsRequest) (*dto.ListBookingsResponse, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	schedules scheduleservice.ScheduleService
	gateway   calendarservice.Gateway
	now       func() time.Time
}

func NewBookingService(repo repository.BookingRepository, schedules scheduleservice.ScheduleService, gateway calendarservice.Gateway) BookingService {
	return &bookingService{
		repo:      repo,
		schedules: schedules,
		gateway:   gateway,
		now:       time.Now,
	}
}

// NewBookingServiceWithClock pins the clock. Tests only.
func NewBookingServiceWithClock(repo repository.BookingRepository, schedules scheduleservice.ScheduleService, gateway calendarservice.Gateway, now func() time.Time) BookingService {
	return &bookingService{repo: repo, schedules: schedules, gateway: gateway, now: now}
}

func assistantSignature() string {
	if cfg, ok := config.GetSafe(); ok && cfg.Booking.AssistantSignature != "" {
		return cfg.Booking.AssistantSignature
	}
	return "Booked via booking assistant"
}

// validateCommit rejects malformed input before any I/O happens.
func validateCommit(req *dto.CreateBookingRequest) (start, end time.Time, err error) {
	if req.ConversationID == "" || req.SenderID == "" {
		return start, end, errors.NewAppError(errors.ErrInvalidInput, "conversation_id and sender_id are required", nil)
	}
	if !entity.ValidPlatform(req.Platform) {
		return start, end, errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("Invalid platform: %s. Must be %q or %q", req.Platform, entity.PlatformInstagram, entity.PlatformWhatsApp), nil)
	}
	if req.Summary == "" {
		return start, end, errors.NewAppError(errors.ErrInvalidInput, "Summary is required", nil)
	}
	start, err = time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return start, end, errors.NewAppError(errors.ErrInvalidInput, "Invalid start time. Use RFC3339 format with UTC offset", nil)
	}
	end, err = time.Parse(time.RFC3339, req.End)
	if err != nil {
		return start, end, errors.NewAppError(errors.ErrInvalidInput, "Invalid end time. Use RFC3339 format with UTC offset", nil)
	}
	if !end.After(start) {
		return start, end, errors.NewAppError(errors.ErrInvalidInput, "End time must be after start time", nil)
	}
	return start, end, nil
}

// governingSlot finds the generated slot whose window matches the
// requested interval exactly, if the schedule defines one.
func governingSlot(schedules []scheduleentity.WeeklySchedule, start, end time.Time, loc *time.Location) *scheduleentity.AppointmentSlot {
	localStart := start.In(loc)
	day := scheduleservice.ResolveDay(schedules, localStart)
	for _, slot := range scheduleservice.GenerateSlots(day.Rules, localStart, loc) {
		if slot.Start.Equal(start) && slot.End.Equal(end) {
			return &slot
		}
	}
	return nil
}

func (s *bookingService) Commit(ctx context.Context, businessID uuid.UUID, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	start, end, err := validateCommit(req)
	if err != nil {
		return nil, err
	}

	business, err := s.schedules.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	loc, err := business.Location()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Business timezone is invalid", err)
	}

	// Fresh read of exactly the requested window. Availability shown
	// earlier in the conversation is stale by definition.
	events, err := s.gateway.ListEvents(ctx, business.UserID, start, end)
	if err != nil {
		return nil, err
	}

	schedules, err := s.schedules.WeekFor(ctx, businessID)
	if err != nil {
		return nil, err
	}
	slot := governingSlot(schedules, start, end, loc)

	if err := checkConflicts(slot, events, start, end); err != nil {
		logger.Info("BookingService:Commit:Conflict",
			"business_id", businessID, "start", req.Start, "reason", errors.ConflictReason(err))
		return nil, err
	}

	input := &calendarentity.EventInput{
		Summary:     fmt.Sprintf("Booking with %s : %s", business.BusinessName, req.Summary),
		Description: buildDescription(req),
		Start:       start,
		End:         end,
		TimeZone:    loc.String(),
		Private: map[string]string{
			calendarservice.BookingMarkerKey: slug.Make(business.BusinessName),
		},
	}
	if req.AttendeeEmail != "" {
		input.Attendees = []calendarentity.EventAttendee{
			{Email: req.AttendeeEmail, DisplayName: req.AttendeeName},
		}
	}

	eventID, err := s.gateway.InsertEvent(ctx, business.UserID, input)
	if err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		UserID:         business.UserID,
		BusinessID:     businessID,
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		Platform:       req.Platform,
		EventID:        eventID,
		Summary:        req.Summary,
		Description:    req.Description,
		AttendeeEmail:  req.AttendeeEmail,
		AttendeeName:   req.AttendeeName,
		StartTime:      start,
		EndTime:        end,
		Status:         entity.StatusActive,
	}
	saved, err := s.repo.Create(ctx, booking)
	if err != nil {
		// The event is on the calendar with no local record. Surface
		// it loudly; the reconciliation sweep picks these up.
		logger.Error("BookingService:Commit:PartialCommit",
			"business_id", businessID, "event_id", eventID, "error", err)
		return nil, errors.NewAppError(errors.ErrPartialCommit,
			fmt.Sprintf("Booking event %s was created on the calendar but could not be recorded locally", eventID), err)
	}

	logger.Info("BookingService:Commit:Success",
		"business_id", businessID, "booking_id", saved.ID, "event_id", eventID)
	return &dto.CreateBookingResponse{
		BookingID: saved.ID.String(),
		EventID:   eventID,
		Start:     start,
		End:       end,
	}, nil
}

// checkConflicts applies the commit re-check against a fresh event set.
// With a governing rule, events this system booked consume capacity and
// anything else blocks outright. Without one, the window is ungoverned
// and any overlapping event blocks it.
func checkConflicts(slot *scheduleentity.AppointmentSlot, events []calendarentity.CalendarEvent, start, end time.Time) error {
	bookings := 0
	for _, ev := range events {
		if !ev.Overlaps(start, end) {
			continue
		}
		if slot != nil && calendarservice.IsBookingEvent(ev) {
			bookings++
			continue
		}
		return errors.NewConflictError(errors.ConflictOverlap,
			"The requested time overlaps an existing calendar event")
	}
	if slot != nil && bookings >= slot.MaxBookings {
		return errors.NewConflictError(errors.ConflictCapacity,
			"The requested slot is fully booked")
	}
	return nil
}

func buildDescription(req *dto.CreateBookingRequest) string {
	desc := req.Description
	if desc != "" {
		desc += "\n\n"
	}
	desc += assistantSignature()
	desc += fmt.Sprintf("\nPlatform: %s", req.Platform)
	return desc
}

func (s *bookingService) Cancel(ctx context.Context, businessID uuid.UUID, eventID string) (*dto.CancelBookingResponse, error) {
	if eventID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Event ID is required", nil)
	}

	business, err := s.schedules.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetByEventID(ctx, business.UserID, eventID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if !booking.IsActive() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Booking is already cancelled", nil)
	}

	// External delete first. If the calendar still holds the event we
	// must not record a cancellation locally.
	if err := s.gateway.DeleteEvent(ctx, business.UserID, eventID); err != nil {
		return nil, err
	}

	cancelledAt := s.now()
	if err := s.repo.MarkCancelled(ctx, business.UserID, eventID, cancelledAt); err != nil {
		logger.Error("BookingService:Cancel:MarkCancelled:Error",
			"business_id", businessID, "event_id", eventID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to record cancellation", err)
	}

	logger.Info("BookingService:Cancel:Success", "business_id", businessID, "event_id", eventID)
	return &dto.CancelBookingResponse{
		Status:      entity.StatusCancelled,
		EventID:     eventID,
		CancelledAt: &cancelledAt,
	}, nil
}

func (s *bookingService) List(ctx context.Context, businessID uuid.UUID, req *dto.ListBookingsRequest) (*dto.ListBookingsResponse, error) {
	if req.ConversationID == "" && req.SenderID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "conversationId or senderId is required", nil)
	}
	if req.SenderID != "" && req.ConversationID == "" && !entity.ValidPlatform(req.Platform) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "platform is required when listing by senderId", nil)
	}

	business, err := s.schedules.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	var bookings []entity.Booking
	if req.ConversationID != "" {
		bookings, err = s.repo.ListActiveByConversation(ctx, business.UserID, req.ConversationID)
	} else {
		bookings, err = s.repo.ListActiveBySender(ctx, business.UserID, req.SenderID, req.Platform)
	}
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []entity.Booking{}
	}
	return &dto.ListBookingsResponse{Bookings: bookings, Total: len(bookings)}, nil
}
