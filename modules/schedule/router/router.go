package router

import (
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/schedule/controller"

	"github.com/labstack/echo/v4"
)

type ScheduleRouter struct {
	ScheduleController *controller.ScheduleController
}

func NewScheduleRouter(scheduleController *controller.ScheduleController) *ScheduleRouter {
	return &ScheduleRouter{
		ScheduleController: scheduleController,
	}
}

// Setup registers schedule management routes
func (r *ScheduleRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	scheduleRoutes := v1.Group("/private/schedule", mw.AuthMiddleware())
	scheduleRoutes.GET("", r.ScheduleController.GetWeek)
	scheduleRoutes.PUT("/days/:dayOfWeek", r.ScheduleController.UpsertDay)
	scheduleRoutes.GET("/days/:dayOfWeek", r.ScheduleController.GetDay)
	scheduleRoutes.DELETE("/days/:dayOfWeek", r.ScheduleController.DeleteDay)

	scheduleRoutes.POST("/overrides", r.ScheduleController.SetDateOverride)
	scheduleRoutes.DELETE("/overrides/:date", r.ScheduleController.RemoveDateOverride)

	scheduleRoutes.POST("/check-availability", r.ScheduleController.CheckAvailability)
	scheduleRoutes.GET("/availability", r.ScheduleController.AvailabilityRange)
}
