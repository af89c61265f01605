package repository

import (
	"context"
	"database/sql"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/database"
	"go-booking-assistant/core/utils"
	"go-booking-assistant/modules/calendar/entity"

	"github.com/google/uuid"
)

type CalendarRepository interface {
	GetConnectionByUser(ctx context.Context, userID uuid.UUID) (*entity.CalendarConnection, error)
	SaveConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error)
	UpdateTokens(ctx context.Context, conn *entity.CalendarConnection) error
	// Disconnect clears the stored tokens and flips the integration
	// status so later calls fail fast instead of retry-looping.
	Disconnect(ctx context.Context, userID uuid.UUID) error
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

func masterKey() string {
	if cfg, ok := config.GetSafe(); ok {
		return cfg.EncryptionMasterKey
	}
	return ""
}

func (r *calendarRepository) GetConnectionByUser(ctx context.Context, userID uuid.UUID) (*entity.CalendarConnection, error) {
	query := `
		SELECT id, user_id, provider, access_token, refresh_token, token_expires_at,
		       calendar_email, integration_status, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1 AND provider = $2
	`
	var conn entity.CalendarConnection
	err := r.db.GetContext(ctx, &conn, query, userID, entity.ProviderGoogle)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	key := masterKey()
	if conn.AccessToken, err = utils.DecryptToken(key, conn.AccessToken); err != nil {
		return nil, err
	}
	if conn.RefreshToken, err = utils.DecryptToken(key, conn.RefreshToken); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *calendarRepository) SaveConnection(ctx context.Context, conn *entity.CalendarConnection) (*entity.CalendarConnection, error) {
	key := masterKey()
	access, err := utils.EncryptToken(key, conn.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.EncryptToken(key, conn.RefreshToken)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO calendar_connections (user_id, provider, access_token, refresh_token, token_expires_at, calendar_email, integration_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET access_token = EXCLUDED.access_token,
		              refresh_token = EXCLUDED.refresh_token,
		              token_expires_at = EXCLUDED.token_expires_at,
		              calendar_email = EXCLUDED.calendar_email,
		              integration_status = EXCLUDED.integration_status,
		              updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		conn.UserID, entity.ProviderGoogle, access, refresh,
		conn.TokenExpiresAt, conn.CalendarEmail, conn.IntegrationStatus,
	).Scan(&conn.ID, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *calendarRepository) UpdateTokens(ctx context.Context, conn *entity.CalendarConnection) error {
	key := masterKey()
	access, err := utils.EncryptToken(key, conn.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := utils.EncryptToken(key, conn.RefreshToken)
	if err != nil {
		return err
	}

	query := `
		UPDATE calendar_connections
		SET access_token = $1, refresh_token = $2, token_expires_at = $3, updated_at = NOW()
		WHERE user_id = $4 AND provider = $5
	`
	return r.db.ExecContext(ctx, query, access, refresh, conn.TokenExpiresAt, conn.UserID, entity.ProviderGoogle)
}

func (r *calendarRepository) Disconnect(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE calendar_connections
		SET access_token = '', refresh_token = '', integration_status = $1, updated_at = NOW()
		WHERE user_id = $2 AND provider = $3
	`
	return r.db.ExecContext(ctx, query, entity.StatusNotConnected, userID, entity.ProviderGoogle)
}
