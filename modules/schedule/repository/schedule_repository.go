package repository

import (
	"context"
	"database/sql"

	"go-booking-assistant/core/database"
	"go-booking-assistant/modules/schedule/entity"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	GetByBusinessAndDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*entity.WeeklySchedule, error)
	GetActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error)
	GetAllByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error)
	Upsert(ctx context.Context, ws *entity.WeeklySchedule) (*entity.WeeklySchedule, error)
	Delete(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (bool, error)

	// Business reads. Business records are managed elsewhere; the
	// engine only ever reads them.
	GetBusiness(ctx context.Context, businessID uuid.UUID) (*entity.Business, error)
	GetBusinessByUser(ctx context.Context, userID uuid.UUID) (*entity.Business, error)
	ListBusinesses(ctx context.Context) ([]entity.Business, error)
}

type scheduleRepository struct {
	db database.IDatabase
}

func NewScheduleRepository(db database.IDatabase) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) GetByBusinessAndDay(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*entity.WeeklySchedule, error) {
	query := `
		SELECT id, business_id, day_of_week, slots, date_overrides, is_active, created_at, updated_at
		FROM weekly_schedules
		WHERE business_id = $1 AND day_of_week = $2
	`
	var ws entity.WeeklySchedule
	err := r.db.GetContext(ctx, &ws, query, businessID, dayOfWeek)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ws, nil
}

func (r *scheduleRepository) GetActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	query := `
		SELECT id, business_id, day_of_week, slots, date_overrides, is_active, created_at, updated_at
		FROM weekly_schedules
		WHERE business_id = $1 AND is_active = true
		ORDER BY day_of_week ASC
	`
	var schedules []entity.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, businessID); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) GetAllByBusiness(ctx context.Context, businessID uuid.UUID) ([]entity.WeeklySchedule, error) {
	query := `
		SELECT id, business_id, day_of_week, slots, date_overrides, is_active, created_at, updated_at
		FROM weekly_schedules
		WHERE business_id = $1
		ORDER BY day_of_week ASC
	`
	var schedules []entity.WeeklySchedule
	if err := r.db.SelectContext(ctx, &schedules, query, businessID); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *scheduleRepository) Upsert(ctx context.Context, ws *entity.WeeklySchedule) (*entity.WeeklySchedule, error) {
	query := `
		INSERT INTO weekly_schedules (business_id, day_of_week, slots, date_overrides, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (business_id, day_of_week)
		DO UPDATE SET slots = EXCLUDED.slots,
		              date_overrides = EXCLUDED.date_overrides,
		              is_active = EXCLUDED.is_active,
		              updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		ws.BusinessID, ws.DayOfWeek, ws.Slots, ws.DateOverrides, ws.IsActive,
	).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (bool, error) {
	var id uuid.UUID
	query := `
		DELETE FROM weekly_schedules
		WHERE business_id = $1 AND day_of_week = $2
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, businessID, dayOfWeek).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *scheduleRepository) GetBusiness(ctx context.Context, businessID uuid.UUID) (*entity.Business, error) {
	query := `
		SELECT id, user_id, business_name, timezone, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`
	var b entity.Business
	err := r.db.GetContext(ctx, &b, query, businessID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *scheduleRepository) GetBusinessByUser(ctx context.Context, userID uuid.UUID) (*entity.Business, error) {
	query := `
		SELECT id, user_id, business_name, timezone, created_at, updated_at
		FROM businesses
		WHERE user_id = $1
	`
	var b entity.Business
	err := r.db.GetContext(ctx, &b, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *scheduleRepository) ListBusinesses(ctx context.Context) ([]entity.Business, error) {
	query := `
		SELECT id, user_id, business_name, timezone, created_at, updated_at
		FROM businesses
		ORDER BY created_at ASC
	`
	var businesses []entity.Business
	if err := r.db.SelectContext(ctx, &businesses, query); err != nil {
		return nil, err
	}
	return businesses, nil
}
