package booking

import (
	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/booking/controller"
	"go-booking-assistant/modules/booking/repository"
	"go-booking-assistant/modules/booking/router"
	"go-booking-assistant/modules/booking/service"
	"go-booking-assistant/modules/booking/task"
	"go-booking-assistant/modules/calendar"
	schedulerepository "go-booking-assistant/modules/schedule/repository"
	scheduleservice "go-booking-assistant/modules/schedule/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

// Init initializes the booking module and registers routes
func Init(e *echo.Echo, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) {
	repo := repository.NewBookingRepository(db)
	scheduleRepo := schedulerepository.NewScheduleRepository(db)
	schedules := scheduleservice.NewScheduleService(scheduleRepo)
	gateway := calendar.NewGateway(db, c)
	svc := service.NewBookingService(repo, schedules, gateway)
	ctrl := controller.NewBookingController(svc)
	rtr := router.NewBookingRouter(ctrl)

	rtr.Setup(e, mw)
}

// RegisterTasks mounts the booking background handlers on the worker mux.
func RegisterTasks(mux *asynq.ServeMux, db database.IDatabase, c cache.Cache) {
	reconciler := task.NewReconciler(
		repository.NewBookingRepository(db),
		schedulerepository.NewScheduleRepository(db),
		calendar.NewGateway(db, c),
	)
	mux.HandleFunc(task.TypeReconcile, reconciler.HandleReconcile)
}
