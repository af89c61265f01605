package calendar

import (
	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/calendar/controller"
	"go-booking-assistant/modules/calendar/repository"
	"go-booking-assistant/modules/calendar/router"
	"go-booking-assistant/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the calendar module and registers routes
func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) {
	repo := repository.NewCalendarRepository(db)
	svc := service.NewCalendarService(repo, c)
	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)
}

// NewGateway builds the external calendar gateway for other modules.
func NewGateway(db database.IDatabase, c cache.Cache) service.Gateway {
	repo := repository.NewCalendarRepository(db)
	return service.NewGoogleGateway(repo, c)
}
