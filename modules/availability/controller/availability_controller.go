package controller

import (
	"go-booking-assistant/core/controller"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/modules/availability/dto"
	"go-booking-assistant/modules/availability/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AvailabilityController handles availability HTTP requests
type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityService
}

func NewAvailabilityController(svc service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
	}
}

// AvailableSlots handles GET /businesses/:businessId/available-slots
func (c *AvailabilityController) AvailableSlots(ctx echo.Context) error {
	businessID, err := uuid.Parse(ctx.Param("businessId"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid business ID")
	}

	var req dto.AvailableSlotsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid query parameters")
	}

	result, err := c.AvailabilityService.Resolve(ctx.Request().Context(), businessID, req.StartDate, req.EndDate)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Success")
}
