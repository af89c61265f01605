package router

import (
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	BookingController *controller.BookingController
}

func NewBookingRouter(bookingController *controller.BookingController) *BookingRouter {
	return &BookingRouter{
		BookingController: bookingController,
	}
}

// Setup registers booking routes
func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	bookingRoutes := v1.Group("/private/businesses/:businessId/bookings", mw.AuthMiddleware())
	bookingRoutes.POST("", r.BookingController.CreateBooking)
	bookingRoutes.GET("", r.BookingController.ListBookings)
	bookingRoutes.DELETE("/:eventId", r.BookingController.CancelBooking)
}
