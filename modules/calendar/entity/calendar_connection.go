package entity

import (
	"time"

	"go-booking-assistant/core/entity"

	"github.com/google/uuid"
)

const (
	ProviderGoogle = "google"

	StatusConnected    = "connected"
	StatusNotConnected = "not_connected"
)

// CalendarConnection is the owner's credential record for the external
// calendar. Tokens are encrypted at rest by the repository; in-memory
// instances always carry plaintext.
type CalendarConnection struct {
	entity.BaseEntity
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	Provider          string    `db:"provider" json:"provider"`
	AccessToken       string    `db:"access_token" json:"-"`
	RefreshToken      string    `db:"refresh_token" json:"-"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at"`
	CalendarEmail     string    `db:"calendar_email" json:"calendar_email"`
	IntegrationStatus string    `db:"integration_status" json:"integration_status"`
}

func (CalendarConnection) TableName() string {
	return "calendar_connections"
}

func (c *CalendarConnection) IsConnected() bool {
	return c != nil && c.IntegrationStatus == StatusConnected
}
