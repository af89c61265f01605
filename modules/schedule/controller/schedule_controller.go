package controller

import (
	"strconv"

	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/controller"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/schedule/dto"
	"go-booking-assistant/modules/schedule/entity"
	"go-booking-assistant/modules/schedule/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ScheduleController handles weekly schedule HTTP requests. All routes
// operate on the authenticated owner's business.
type ScheduleController struct {
	controller.BaseController
	ScheduleService service.ScheduleService
}

func NewScheduleController(svc service.ScheduleService) *ScheduleController {
	return &ScheduleController{
		BaseController:  controller.NewBaseController(),
		ScheduleService: svc,
	}
}

func (c *ScheduleController) business(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	business, err := c.ScheduleService.BusinessByUser(ctx.Request().Context(), userID)
	if err != nil {
		return uuid.Nil, err
	}
	return business.ID, nil
}

func dayResponse(ws *entity.WeeklySchedule) dto.DayScheduleResponse {
	return dto.DayScheduleResponse{
		ID:            ws.ID.String(),
		DayOfWeek:     ws.DayOfWeek,
		DayName:       constants.DayNames[ws.DayOfWeek],
		Slots:         ws.Slots,
		DateOverrides: ws.DateOverrides,
		IsActive:      ws.IsActive,
	}
}

// UpsertDay handles PUT /schedule/days/:dayOfWeek
func (c *ScheduleController) UpsertDay(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	dayOfWeek, err := strconv.Atoi(ctx.Param("dayOfWeek"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)")
	}

	var req dto.UpsertDayRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	ws, err := c.ScheduleService.UpsertDay(ctx.Request().Context(), businessID, dayOfWeek, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dayResponse(ws), "Schedule saved")
}

// GetWeek handles GET /schedule
func (c *ScheduleController) GetWeek(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	week, err := c.ScheduleService.GetWeek(ctx.Request().Context(), businessID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	resp := dto.WeekScheduleResponse{TotalDays: len(week)}
	for i := range week {
		resp.TimeSlots = append(resp.TimeSlots, dayResponse(&week[i]))
	}
	return c.SuccessResponse(ctx, resp, "Success")
}

// GetDay handles GET /schedule/days/:dayOfWeek
func (c *ScheduleController) GetDay(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	dayOfWeek, err := strconv.Atoi(ctx.Param("dayOfWeek"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)")
	}

	ws, err := c.ScheduleService.GetDay(ctx.Request().Context(), businessID, dayOfWeek)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dayResponse(ws), "Success")
}

// DeleteDay handles DELETE /schedule/days/:dayOfWeek
func (c *ScheduleController) DeleteDay(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	dayOfWeek, err := strconv.Atoi(ctx.Param("dayOfWeek"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid day of week. Must be 0-6 (0=Sunday, 6=Saturday)")
	}

	if err := c.ScheduleService.DeleteDay(ctx.Request().Context(), businessID, dayOfWeek); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "Schedule deleted")
}

// SetDateOverride handles POST /schedule/overrides
func (c *ScheduleController) SetDateOverride(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var req dto.DateOverrideRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	override, err := c.ScheduleService.SetDateOverride(ctx.Request().Context(), businessID, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, override, "Date override saved")
}

// RemoveDateOverride handles DELETE /schedule/overrides/:date
func (c *ScheduleController) RemoveDateOverride(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	if err := c.ScheduleService.RemoveDateOverride(ctx.Request().Context(), businessID, ctx.Param("date")); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "Date override removed")
}

// CheckAvailability handles POST /schedule/check-availability
func (c *ScheduleController) CheckAvailability(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var req dto.CheckAvailabilityRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, err := c.ScheduleService.CheckAvailability(ctx.Request().Context(), businessID, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// AvailabilityRange handles GET /schedule/availability
func (c *ScheduleController) AvailabilityRange(ctx echo.Context) error {
	businessID, err := c.business(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, err := c.ScheduleService.AvailabilityRange(ctx.Request().Context(), businessID,
		ctx.QueryParam("startDate"), ctx.QueryParam("endDate"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Success")
}
