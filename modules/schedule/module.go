package schedule

import (
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/schedule/controller"
	"go-booking-assistant/modules/schedule/repository"
	"go-booking-assistant/modules/schedule/router"
	"go-booking-assistant/modules/schedule/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the schedule module and registers routes
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) {
	repo := repository.NewScheduleRepository(db)
	svc := service.NewScheduleService(repo)
	ctrl := controller.NewScheduleController(svc)
	rtr := router.NewScheduleRouter(ctrl)

	rtr.Setup(e, mw)
}
