package router

import (
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	CalendarController *controller.CalendarController
}

func NewCalendarRouter(calendarController *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		CalendarController: calendarController,
	}
}

// Setup registers calendar connection routes
func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// Public routes: the connect link itself is the credential.
	publicRoutes := v1.Group("/public/calendar")
	publicRoutes.GET("/connect/:token", r.CalendarController.StartOAuth)
	publicRoutes.GET("/oauth/callback", r.CalendarController.OAuthCallback)

	privateRoutes := v1.Group("/private/calendar", mw.AuthMiddleware())
	privateRoutes.POST("/connect-link", r.CalendarController.CreateConnectLink)
	privateRoutes.GET("/status", r.CalendarController.Status)
	privateRoutes.DELETE("/connection", r.CalendarController.Disconnect)
}
