package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/config"
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/availability"
	"go-booking-assistant/modules/booking"
	"go-booking-assistant/modules/booking/task"
	"go-booking-assistant/modules/calendar"
	"go-booking-assistant/modules/schedule"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run wires everything together and blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	redisCache, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware()

	schedule.Init(e, db, mw)
	calendar.Init(e, db, redisCache, mw)
	availability.Init(e, db, redisCache, mw)
	booking.Init(e, db, redisCache, mw)

	worker, scheduler := startWorkers(cfg, db, redisCache)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server:Starting", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start:Error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server:ShuttingDown")
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if worker != nil {
		worker.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// startWorkers brings up the asynq worker and the periodic scheduler.
// Both are best-effort: the HTTP API stays up even if they fail.
func startWorkers(cfg *config.Config, db database.IDatabase, c cache.Cache) (*asynq.Server, *asynq.Scheduler) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	mux := asynq.NewServeMux()
	booking.RegisterTasks(mux, db, c)

	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
	})
	go func() {
		if err := worker.Run(mux); err != nil {
			logger.Error("Server:Worker:Error", "error", err)
		}
	}()

	scheduler := asynq.NewScheduler(redisOpt, nil)
	reconcile, err := task.NewReconcileTask()
	if err != nil {
		logger.Error("Server:Scheduler:BuildTask:Error", "error", err)
		return worker, nil
	}
	if _, err := scheduler.Register(task.ReconcileSchedule, reconcile); err != nil {
		logger.Error("Server:Scheduler:Register:Error", "error", err)
		return worker, nil
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("Server:Scheduler:Error", "error", err)
		}
	}()

	return worker, scheduler
}
