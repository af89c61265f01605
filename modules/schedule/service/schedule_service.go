package service

import (
	"context"
	"fmt"
	"time"

	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/modules/schedule/dto"
	"go-booking-assistant/modules/schedule/entity"
	"go-booking-assistant/modules/schedule/repository"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type ScheduleService interface {
	// Resolution used by the availability resolver and the booking
	// commit protocol.
	ScheduleFor(ctx context.Context, businessID uuid.UUID, date time.Time) (*entity.DaySchedule, error)
	WeekFor(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error)

	// Business reads
	BusinessByID(ctx context.Context, businessID uuid.UUID) (*entity.Business, error)
	BusinessByUser(ctx context.Context, userID uuid.UUID) (*entity.Business, error)

	// Owner-facing schedule management
	UpsertDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int, req *dto.UpsertDayRequest) (*entity.WeeklySchedule, error)
	GetDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*entity.WeeklySchedule, error)
	GetWeek(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error)
	DeleteDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) error
	SetDateOverride(ctx context.Context, businessID uuid.UUID, req *dto.DateOverrideRequest) (*entity.DateOverride, error)
	RemoveDateOverride(ctx context.Context, businessID uuid.UUID, date string) error
	CheckAvailability(ctx context.Context, businessID uuid.UUID, req *dto.CheckAvailabilityRequest) (*dto.CheckAvailabilityResponse, error)
	AvailabilityRange(ctx context.Context, businessID uuid.UUID, startDate, endDate string) (*dto.AvailabilityRangeResponse, error)
}

type scheduleService struct {
	repo repository.ScheduleRepository
}

func NewScheduleService(repo repository.ScheduleRepository) ScheduleService {
	return &scheduleService{repo: repo}
}

// ValidateSlotRules enforces the rule bounds shared by regular slots
// and override custom slots: HH:MM times, end after start, duration
// 15-480 minutes, maxBookings 1-10.
func ValidateSlotRules(rules []entity.SlotRule) error {
	for _, rule := range rules {
		if !ValidTimeFormat(rule.StartTime) {
			return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("Invalid start time: %s", rule.StartTime), nil)
		}
		if !ValidTimeFormat(rule.EndTime) {
			return errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("Invalid end time: %s", rule.EndTime), nil)
		}
		start, _ := TimeToMinutes(rule.StartTime)
		end, _ := TimeToMinutes(rule.EndTime)
		if end <= start {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("End time must be after start time for slot: %s - %s", rule.StartTime, rule.EndTime), nil)
		}
		if rule.Duration < constants.MinSlotDurationMinutes || rule.Duration > constants.MaxSlotDurationMinutes {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("Invalid duration: %d. Must be between %d and %d minutes", rule.Duration, constants.MinSlotDurationMinutes, constants.MaxSlotDurationMinutes), nil)
		}
		if rule.MaxBookings != 0 && (rule.MaxBookings < constants.MinMaxBookings || rule.MaxBookings > constants.MaxMaxBookings) {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("Invalid maxBookings: %d. Must be between %d and %d", rule.MaxBookings, constants.MinMaxBookings, constants.MaxMaxBookings), nil)
		}
	}
	return nil
}

// ValidDayOfWeek reports whether day is in the 0=Sunday..6=Saturday
// range used throughout the API.
func ValidDayOfWeek(day int) bool {
	return day >= 0 && day <= 6
}

// ResolveDay answers "which rules govern this date" given all of a
// business's weekly schedules. An exact-date override wins entirely
// over the weekday's regular rules; an unavailable override yields no
// rules. No configuration at all also yields no rules - that is a
// valid state, not an error.
func ResolveDay(schedules []entity.WeeklySchedule, date time.Time) entity.DaySchedule {
	dateStr := date.Format(dateLayout)

	// Overrides are anchored to the date's weekday document on write,
	// but historical data may carry them anywhere, so scan all.
	for _, ws := range schedules {
		for _, override := range ws.DateOverrides {
			if override.Date != dateStr {
				continue
			}
			if !override.IsAvailable {
				return entity.DaySchedule{Source: entity.SourceOverride}
			}
			return entity.DaySchedule{
				Rules:  activeRules(override.CustomSlots),
				Source: entity.SourceOverride,
			}
		}
	}

	dayOfWeek := int(date.Weekday())
	for _, ws := range schedules {
		if ws.DayOfWeek != dayOfWeek || !ws.IsActive {
			continue
		}
		return entity.DaySchedule{
			Rules:  activeRules(ws.Slots),
			Source: entity.SourceRegular,
		}
	}
	return entity.DaySchedule{Source: entity.SourceRegular}
}

func activeRules(rules []entity.SlotRule) []entity.SlotRule {
	var active []entity.SlotRule
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active
}

func (s *scheduleService) ScheduleFor(ctx context.Context, businessID uuid.UUID, date time.Time) (*entity.DaySchedule, error) {
	schedules, err := s.repo.GetActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	day := ResolveDay(schedules, date)
	return &day, nil
}

func (s *scheduleService) WeekFor(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	return s.repo.GetActiveByBusiness(ctx, businessID)
}

func (s *scheduleService) BusinessByID(ctx context.Context, businessID uuid.UUID) (*entity.Business, error) {
	b, err := s.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Business information not found", nil)
	}
	return b, nil
}

func (s *scheduleService) BusinessByUser(ctx context.Context, userID uuid.UUID) (*entity.Business, error) {
	b, err := s.repo.GetBusinessByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Business information not found. Please create business information first.", nil)
	}
	return b, nil
}

func (s *scheduleService) UpsertDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int, req *dto.UpsertDayRequest) (*entity.WeeklySchedule, error) {
	if !ValidDayOfWeek(dayOfWeek) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)", nil)
	}
	if err := ValidateSlotRules(req.Slots); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByBusinessAndDay(ctx, businessID, dayOfWeek)
	if err != nil {
		return nil, err
	}

	ws := &entity.WeeklySchedule{
		BusinessID: businessID,
		DayOfWeek:  dayOfWeek,
		Slots:      normalizeRules(req.Slots),
		IsActive:   true,
	}
	if existing != nil {
		ws.DateOverrides = existing.DateOverrides
		ws.IsActive = existing.IsActive
	}
	if req.IsActive != nil {
		ws.IsActive = *req.IsActive
	}

	saved, err := s.repo.Upsert(ctx, ws)
	if err != nil {
		logger.Error("ScheduleService:UpsertDay:Error", "business_id", businessID, "day_of_week", dayOfWeek, "error", err)
		return nil, err
	}
	logger.Info("ScheduleService:UpsertDay:Success", "business_id", businessID, "day_of_week", dayOfWeek, "slots", len(saved.Slots))
	return saved, nil
}

// normalizeRules fills the defaults the storage layer expects.
func normalizeRules(rules []entity.SlotRule) entity.SlotRuleList {
	out := make(entity.SlotRuleList, len(rules))
	for i, r := range rules {
		if r.MaxBookings == 0 {
			r.MaxBookings = 1
		}
		out[i] = r
	}
	return out
}

func (s *scheduleService) GetDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*entity.WeeklySchedule, error) {
	if !ValidDayOfWeek(dayOfWeek) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)", nil)
	}
	ws, err := s.repo.GetByBusinessAndDay(ctx, businessID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, errors.NewAppError(errors.ErrNotFound,
			fmt.Sprintf("No time slots found for %s", constants.DayNames[dayOfWeek]), nil)
	}
	return ws, nil
}

func (s *scheduleService) GetWeek(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	return s.repo.GetAllByBusiness(ctx, businessID)
}

func (s *scheduleService) DeleteDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) error {
	if !ValidDayOfWeek(dayOfWeek) {
		return errors.NewAppError(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)", nil)
	}
	deleted, err := s.repo.Delete(ctx, businessID, dayOfWeek)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NewAppError(errors.ErrNotFound,
			fmt.Sprintf("No time slots found for %s to delete", constants.DayNames[dayOfWeek]), nil)
	}
	return nil
}

func (s *scheduleService) SetDateOverride(ctx context.Context, businessID uuid.UUID, req *dto.DateOverrideRequest) (*entity.DateOverride, error) {
	if req.Date == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date is required", nil)
	}
	if req.IsAvailable == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "isAvailable must be a boolean value", nil)
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD format", nil)
	}
	if !*req.IsAvailable && len(req.CustomSlots) > 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Custom slots are only allowed when isAvailable is true", nil)
	}
	if len(req.CustomSlots) > 0 {
		if err := ValidateSlotRules(req.CustomSlots); err != nil {
			return nil, err
		}
	}

	dayOfWeek := int(date.Weekday())
	ws, err := s.repo.GetByBusinessAndDay(ctx, businessID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = &entity.WeeklySchedule{
			BusinessID: businessID,
			DayOfWeek:  dayOfWeek,
			Slots:      entity.SlotRuleList{},
			IsActive:   true,
		}
	}

	override := entity.DateOverride{
		Date:        date.Format(dateLayout),
		IsAvailable: *req.IsAvailable,
		CustomSlots: normalizeRules(req.CustomSlots),
		Reason:      req.Reason,
	}

	replaced := false
	for i := range ws.DateOverrides {
		if ws.DateOverrides[i].Date == override.Date {
			ws.DateOverrides[i] = override
			replaced = true
			break
		}
	}
	if !replaced {
		ws.DateOverrides = append(ws.DateOverrides, override)
	}

	if _, err := s.repo.Upsert(ctx, ws); err != nil {
		return nil, err
	}
	logger.Info("ScheduleService:SetDateOverride:Success",
		"business_id", businessID, "date", override.Date, "is_available", override.IsAvailable)
	return &override, nil
}

func (s *scheduleService) RemoveDateOverride(ctx context.Context, businessID uuid.UUID, dateStr string) error {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD format", nil)
	}

	ws, err := s.repo.GetByBusinessAndDay(ctx, businessID, int(date.Weekday()))
	if err != nil {
		return err
	}
	if ws == nil {
		return errors.NewAppError(errors.ErrNotFound, "No time slot configuration found for this day", nil)
	}

	remaining := ws.DateOverrides[:0]
	for _, o := range ws.DateOverrides {
		if o.Date != date.Format(dateLayout) {
			remaining = append(remaining, o)
		}
	}
	if len(remaining) == len(ws.DateOverrides) {
		return errors.NewAppError(errors.ErrNotFound,
			fmt.Sprintf("No override found for date %s", date.Format(dateLayout)), nil)
	}
	ws.DateOverrides = remaining

	_, err = s.repo.Upsert(ctx, ws)
	return err
}

func (s *scheduleService) CheckAvailability(ctx context.Context, businessID uuid.UUID, req *dto.CheckAvailabilityRequest) (*dto.CheckAvailabilityResponse, error) {
	if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Date, startTime, and endTime are required", nil)
	}
	if !ValidTimeFormat(req.StartTime) || !ValidTimeFormat(req.EndTime) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start time and end time must be in HH:MM format (24-hour)", nil)
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD format", nil)
	}

	schedules, err := s.repo.GetActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	day := ResolveDay(schedules, date)

	reqStart, _ := TimeToMinutes(req.StartTime)
	reqEnd, _ := TimeToMinutes(req.EndTime)

	available := false
	for _, rule := range day.Rules {
		ruleStart, _ := TimeToMinutes(rule.StartTime)
		ruleEnd, _ := TimeToMinutes(rule.EndTime)
		if reqStart >= ruleStart && reqEnd <= ruleEnd {
			available = true
			break
		}
	}

	resp := &dto.CheckAvailabilityResponse{
		IsAvailable:   available,
		Date:          date.Format(dateLayout),
		RequestedTime: fmt.Sprintf("%s - %s", req.StartTime, req.EndTime),
	}
	if available {
		resp.MatchingDay = constants.DayNames[int(date.Weekday())]
	}
	return resp, nil
}

func (s *scheduleService) AvailabilityRange(ctx context.Context, businessID uuid.UUID, startDate, endDate string) (*dto.AvailabilityRangeResponse, error) {
	if startDate == "" || endDate == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start date and end date are required", nil)
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD format", nil)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid date format. Use YYYY-MM-DD format", nil)
	}
	if start.After(end) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Start date must be before end date", nil)
	}

	schedules, err := s.repo.GetActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AvailabilityRangeResponse{}
	resp.DateRange.Start = start.Format(dateLayout)
	resp.DateRange.End = end.Format(dateLayout)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		day := ResolveDay(schedules, date)
		slots := day.Rules
		if slots == nil {
			slots = []entity.SlotRule{}
		}
		resp.Availability = append(resp.Availability, dto.DayAvailability{
			Date:        date.Format(dateLayout),
			DayName:     constants.DayNames[int(date.Weekday())],
			IsAvailable: len(day.Rules) > 0,
			Slots:       slots,
		})
	}
	return resp, nil
}
