package repository

import (
	"context"
	"database/sql"
	"time"

	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/database"
	"go-booking-assistant/modules/booking/entity"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error)
	GetByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*entity.Booking, error)
	MarkCancelled(ctx context.Context, userID uuid.UUID, eventID string, at time.Time) error
	ListActiveByConversation(ctx context.Context, userID uuid.UUID, conversationID string) ([]entity.Booking, error)
	ListActiveBySender(ctx context.Context, userID uuid.UUID, senderID, platform string) ([]entity.Booking, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]entity.Booking, error)
}

type bookingRepository struct {
	db database.IDatabase
}

func NewBookingRepository(db database.IDatabase) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, user_id, business_id, conversation_id, sender_id, platform,
	event_id, summary, description, attendee_email, attendee_name,
	start_time, end_time, status, cancelled_at, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *entity.Booking) (*entity.Booking, error) {
	query := `
		INSERT INTO bookings (user_id, business_id, conversation_id, sender_id, platform,
		                      event_id, summary, description, attendee_email, attendee_name,
		                      start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.UserID, b.BusinessID, b.ConversationID, b.SenderID, b.Platform,
		b.EventID, b.Summary, b.Description, b.AttendeeEmail, b.AttendeeName,
		b.StartTime, b.EndTime, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) GetByEventID(ctx context.Context, userID uuid.UUID, eventID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 AND event_id = $2`
	var b entity.Booking
	if err := r.db.GetContext(ctx, &b, query, userID, eventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) MarkCancelled(ctx context.Context, userID uuid.UUID, eventID string, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = $1, cancelled_at = $2, updated_at = NOW()
		WHERE user_id = $3 AND event_id = $4 AND status = $5
	`
	return r.db.ExecContext(ctx, query, entity.StatusCancelled, at, userID, eventID, entity.StatusActive)
}

func (r *bookingRepository) ListActiveByConversation(ctx context.Context, userID uuid.UUID, conversationID string) ([]entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND conversation_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT $4
	`
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID, conversationID, entity.StatusActive, constants.BookingListLimit)
	return bookings, err
}

func (r *bookingRepository) ListActiveBySender(ctx context.Context, userID uuid.UUID, senderID, platform string) ([]entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND sender_id = $2 AND platform = $3 AND status = $4
		ORDER BY created_at DESC
		LIMIT $5
	`
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID, senderID, platform, entity.StatusActive, constants.BookingListLimit)
	return bookings, err
}

func (r *bookingRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, from time.Time) ([]entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status = $2 AND start_time >= $3
		ORDER BY start_time ASC
	`
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID, entity.StatusActive, from)
	return bookings, err
}
