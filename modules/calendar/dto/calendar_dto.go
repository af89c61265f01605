package dto

import "time"

type ConnectLinkResponse struct {
	Token      string `json:"token"`
	ConnectURL string `json:"connect_url"`
	ExpiresIn  string `json:"expires_in"`
}

type ConnectionStatusResponse struct {
	Provider          string     `json:"provider"`
	IntegrationStatus string     `json:"integration_status"`
	CalendarEmail     string     `json:"calendar_email,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
}
