package controller

import (
	"go-booking-assistant/core/controller"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/modules/booking/dto"
	"go-booking-assistant/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BookingController handles booking HTTP requests
type BookingController struct {
	controller.BaseController
	BookingService service.BookingService
}

func NewBookingController(svc service.BookingService) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		BookingService: svc,
	}
}

func businessIDParam(ctx echo.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.Param("businessId"))
}

// CreateBooking handles POST /businesses/:businessId/bookings
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	businessID, err := businessIDParam(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid business ID")
	}

	var req dto.CreateBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, err := c.BookingService.Commit(ctx.Request().Context(), businessID, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.CreatedResponse(ctx, result, "Booking created successfully")
}

// CancelBooking handles DELETE /businesses/:businessId/bookings/:eventId
func (c *BookingController) CancelBooking(ctx echo.Context) error {
	businessID, err := businessIDParam(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid business ID")
	}

	result, err := c.BookingService.Cancel(ctx.Request().Context(), businessID, ctx.Param("eventId"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Booking cancelled")
}

// ListBookings handles GET /businesses/:businessId/bookings
func (c *BookingController) ListBookings(ctx echo.Context) error {
	businessID, err := businessIDParam(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid business ID")
	}

	var req dto.ListBookingsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid query parameters")
	}

	result, err := c.BookingService.List(ctx.Request().Context(), businessID, &req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Success")
}
