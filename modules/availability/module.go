package availability

import (
	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/availability/controller"
	"go-booking-assistant/modules/availability/router"
	"go-booking-assistant/modules/availability/service"
	"go-booking-assistant/modules/calendar"
	schedulerepository "go-booking-assistant/modules/schedule/repository"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the availability module and registers routes
func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) {
	schedules := scheduleservice.NewScheduleService(schedulerepository.NewScheduleRepository(db))
	gateway := calendar.NewGateway(db, c)
	svc := service.NewAvailabilityService(schedules, gateway)
	ctrl := controller.NewAvailabilityController(svc)
	rtr := router.NewAvailabilityRouter(ctrl)

	rtr.Setup(e, mw)
}
