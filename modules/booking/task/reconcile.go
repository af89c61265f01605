package task

import (
	"context"
	"encoding/json"
	"time"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/modules/booking/repository"
	calendarservice "go-booking-assistant/modules/calendar/service"
	schedulerepository "go-booking-assistant/modules/schedule/repository"

	"github.com/hibiken/asynq"
)

const (
	// TypeReconcile sweeps every business's calendar for booking-tagged
	// events that have no local row, the footprint a failed commit
	// step 4 leaves behind.
	TypeReconcile = "booking:reconcile"

	// ReconcileSchedule runs the sweep hourly.
	ReconcileSchedule = "@every 1h"
)

type reconcilePayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

func NewReconcileTask() (*asynq.Task, error) {
	payload, err := json.Marshal(reconcilePayload{RequestedAt: time.Now()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReconcile, payload), nil
}

// Reconciler compares the calendar's booking-tagged events against the
// local booking rows and reports the orphans.
type Reconciler struct {
	bookings  repository.BookingRepository
	schedules schedulerepository.ScheduleRepository
	gateway   calendarservice.Gateway
}

func NewReconciler(bookings repository.BookingRepository, schedules schedulerepository.ScheduleRepository, gateway calendarservice.Gateway) *Reconciler {
	return &Reconciler{bookings: bookings, schedules: schedules, gateway: gateway}
}

func (r *Reconciler) HandleReconcile(ctx context.Context, t *asynq.Task) error {
	var payload reconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	businesses, err := r.schedules.ListBusinesses(ctx)
	if err != nil {
		return err
	}

	days := constants.DefaultAdvanceBookingDays
	if cfg, ok := config.GetSafe(); ok && cfg.Booking.AdvanceBookingDays > 0 {
		days = cfg.Booking.AdvanceBookingDays
	}
	from := time.Now()
	to := from.AddDate(0, 0, days)

	orphans := 0
	for _, business := range businesses {
		events, err := r.gateway.ListEvents(ctx, business.UserID, from, to)
		if err != nil {
			// A disconnected owner is not a sweep failure; skip and
			// keep going.
			if errors.IsCode(err, errors.ErrCalendarAuthExpired) {
				continue
			}
			logger.Error("Reconciler:ListEvents:Error", "business_id", business.ID, "error", err)
			continue
		}

		for _, ev := range events {
			if !calendarservice.IsBookingEvent(ev) {
				continue
			}
			booking, err := r.bookings.GetByEventID(ctx, business.UserID, ev.ID)
			if err != nil {
				logger.Error("Reconciler:GetByEventID:Error", "business_id", business.ID, "event_id", ev.ID, "error", err)
				continue
			}
			if booking == nil {
				orphans++
				logger.Error("Reconciler:OrphanEvent",
					"business_id", business.ID,
					"event_id", ev.ID,
					"summary", ev.Summary,
					"start", ev.Start.Format(time.RFC3339))
			}
		}
	}

	logger.Info("Reconciler:Sweep:Done", "businesses", len(businesses), "orphans", orphans)
	return nil
}
