package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/config"
	"go-booking-assistant/core/constants"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/modules/calendar/entity"
	"go-booking-assistant/modules/calendar/repository"

	"github.com/google/uuid"
)

const (
	defaultAPIBaseURL = "https://www.googleapis.com/calendar/v3"
	defaultTokenURL   = "https://oauth2.googleapis.com/token"

	// BookingMarkerKey is the extended-property key stamped on every
	// event this system inserts. Classification prefers it over the
	// legacy "booking" substring heuristic.
	BookingMarkerKey = "booking_ref"

	maxListResults = 250
)

// Gateway is the only network boundary for time data: list events in a
// range, insert one, delete one. Every call transparently refreshes the
// owner's access token when it is about to expire.
type Gateway interface {
	ListEvents(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error)
	InsertEvent(ctx context.Context, ownerID uuid.UUID, input *entity.EventInput) (string, error)
	DeleteEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error
}

// GatewayConfig lets tests point the gateway at local servers and pin
// the clock. Zero values select production defaults.
type GatewayConfig struct {
	APIBaseURL string
	TokenURL   string
	HTTPClient *http.Client
	Now        func() time.Time
}

type googleGateway struct {
	repo     repository.CalendarRepository
	cache    cache.Cache
	http     *http.Client
	apiBase  string
	tokenURL string
	now      func() time.Time
}

func NewGoogleGateway(repo repository.CalendarRepository, c cache.Cache) Gateway {
	return NewGoogleGatewayWith(repo, c, GatewayConfig{})
}

func NewGoogleGatewayWith(repo repository.CalendarRepository, c cache.Cache, cfg GatewayConfig) Gateway {
	g := &googleGateway{
		repo:     repo,
		cache:    c,
		http:     cfg.HTTPClient,
		apiBase:  cfg.APIBaseURL,
		tokenURL: cfg.TokenURL,
		now:      cfg.Now,
	}
	if g.http == nil {
		g.http = &http.Client{Timeout: constants.CalendarRequestTimeout}
	}
	if g.apiBase == "" {
		g.apiBase = defaultAPIBaseURL
	}
	if g.tokenURL == "" {
		g.tokenURL = defaultTokenURL
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// IsBookingEvent classifies an external event as one of ours. The
// structured marker is authoritative; the substring check keeps events
// created before the marker existed visible to capacity accounting.
func IsBookingEvent(ev entity.CalendarEvent) bool {
	if ev.Private != nil && ev.Private[BookingMarkerKey] != "" {
		return true
	}
	summary := strings.ToLower(ev.Summary)
	description := strings.ToLower(ev.Description)
	return strings.Contains(summary, "booking") || strings.Contains(description, "booking")
}

func (g *googleGateway) connection(ctx context.Context, ownerID uuid.UUID) (*entity.CalendarConnection, error) {
	conn, err := g.repo.GetConnectionByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !conn.IsConnected() {
		return nil, errors.NewAppError(errors.ErrCalendarAuthExpired, "Google Calendar not connected. Please reconnect.", nil)
	}
	return conn, nil
}

// ensureValidToken returns a usable access token, refreshing and
// persisting it when the stored one is within the expiry skew window.
// Concurrent refreshes for one owner are de-duplicated with a
// short-lived Redis lock; the loser re-reads the winner's result.
func (g *googleGateway) ensureValidToken(ctx context.Context, conn *entity.CalendarConnection) (string, error) {
	if g.now().Before(conn.TokenExpiresAt.Add(-constants.TokenExpirySkew)) {
		return conn.AccessToken, nil
	}

	if g.cache != nil {
		lockKey := "calendar:refresh:" + conn.UserID.String()
		acquired, err := g.cache.SetNX(ctx, lockKey, "1", constants.RefreshLockTTL)
		if err == nil && !acquired {
			// Another request is refreshing. Give it a moment, then
			// pick up whatever it persisted.
			time.Sleep(500 * time.Millisecond)
			fresh, err := g.repo.GetConnectionByUser(ctx, conn.UserID)
			if err == nil && fresh.IsConnected() && g.now().Before(fresh.TokenExpiresAt.Add(-constants.TokenExpirySkew)) {
				*conn = *fresh
				return conn.AccessToken, nil
			}
			// Winner failed or has not finished; fall through and
			// refresh ourselves.
		}
		if err == nil && acquired {
			defer g.cache.Del(ctx, lockKey)
		}
	}

	logger.Info("CalendarGateway:RefreshingToken", "user_id", conn.UserID)

	cfg, _ := config.GetSafe()
	form := url.Values{}
	if cfg != nil {
		form.Set("client_id", cfg.GoogleAPI.ClientID)
		form.Set("client_secret", cfg.GoogleAPI.ClientSecret)
	}
	form.Set("refresh_token", conn.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable, "Token refresh request failed", err)
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
		Error        string `json:"error"`
		ErrorDesc    string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable, "Token refresh response unreadable", err)
	}

	if result.Error != "" || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		// Revoked or invalid refresh token: terminal until the owner
		// reconnects manually.
		logger.Error("CalendarGateway:RefreshFailed",
			"user_id", conn.UserID, "error", result.Error, "description", result.ErrorDesc)
		if err := g.repo.Disconnect(ctx, conn.UserID); err != nil {
			logger.Error("CalendarGateway:DisconnectAfterRefreshFailure:Error", "user_id", conn.UserID, "error", err)
		}
		conn.IntegrationStatus = entity.StatusNotConnected
		return "", errors.NewAppError(errors.ErrCalendarAuthExpired,
			"Google Calendar authentication expired. Please reconnect.", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable,
			fmt.Sprintf("Token endpoint returned status %d", resp.StatusCode), nil)
	}
	if result.AccessToken == "" {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable, "No access token in refresh response", nil)
	}

	expiresIn := result.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	conn.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		conn.RefreshToken = result.RefreshToken
	}
	conn.TokenExpiresAt = g.now().Add(time.Duration(expiresIn) * time.Second)

	if err := g.repo.UpdateTokens(ctx, conn); err != nil {
		logger.Error("CalendarGateway:PersistRefreshedToken:Error", "user_id", conn.UserID, "error", err)
	}

	logger.Info("CalendarGateway:RefreshingToken:Success", "user_id", conn.UserID)
	return conn.AccessToken, nil
}

// do executes one authenticated provider call and maps the failure
// modes onto the gateway error taxonomy.
func (g *googleGateway) do(ctx context.Context, conn *entity.CalendarConnection, method, rawURL string, body []byte) (*http.Response, error) {
	token, err := g.ensureValidToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGatewayUnavailable, "Calendar provider unreachable", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		// The provider rejected a token we believed valid; same
		// terminal path as a failed refresh.
		if err := g.repo.Disconnect(ctx, conn.UserID); err != nil {
			logger.Error("CalendarGateway:DisconnectAfterUnauthorized:Error", "user_id", conn.UserID, "error", err)
		}
		return nil, errors.NewAppError(errors.ErrCalendarAuthExpired,
			"Google Calendar authentication expired. Please reconnect.", nil)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, errors.NewAppError(errors.ErrGatewayUnavailable,
			fmt.Sprintf("Calendar provider error (%d): %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t googleEventTime) parse() (time.Time, error) {
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	return time.Parse("2006-01-02", t.Date)
}

type googleEvent struct {
	ID                 string          `json:"id"`
	Summary            string          `json:"summary"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	Start              googleEventTime `json:"start"`
	End                googleEventTime `json:"end"`
	ExtendedProperties *struct {
		Private map[string]string `json:"private"`
	} `json:"extendedProperties,omitempty"`
}

func (g *googleGateway) ListEvents(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]entity.CalendarEvent, error) {
	conn, err := g.connection(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("timeMin", from.Format(time.RFC3339))
	params.Set("timeMax", to.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	params.Set("maxResults", fmt.Sprintf("%d", maxListResults))

	listURL := fmt.Sprintf("%s/calendars/primary/events?%s", g.apiBase, params.Encode())
	resp, err := g.do(ctx, conn, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewAppError(errors.ErrGatewayUnavailable,
			fmt.Sprintf("Event list failed (%d): %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var payload struct {
		Items []googleEvent `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewAppError(errors.ErrGatewayUnavailable, "Event list response unreadable", err)
	}

	events := make([]entity.CalendarEvent, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Status == "cancelled" {
			continue
		}
		start, err := item.Start.parse()
		if err != nil {
			continue
		}
		end, err := item.End.parse()
		if err != nil {
			continue
		}
		ev := entity.CalendarEvent{
			ID:          item.ID,
			Summary:     item.Summary,
			Description: item.Description,
			Status:      item.Status,
			Start:       start,
			End:         end,
		}
		if item.ExtendedProperties != nil {
			ev.Private = item.ExtendedProperties.Private
		}
		events = append(events, ev)
	}
	return events, nil
}

func (g *googleGateway) InsertEvent(ctx context.Context, ownerID uuid.UUID, input *entity.EventInput) (string, error) {
	conn, err := g.connection(ctx, ownerID)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"summary":     input.Summary,
		"description": input.Description,
		"start": googleEventTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		"end": googleEventTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}
	if len(input.Attendees) > 0 {
		payload["attendees"] = input.Attendees
	}
	if len(input.Private) > 0 {
		payload["extendedProperties"] = map[string]any{"private": input.Private}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	insertURL := fmt.Sprintf("%s/calendars/primary/events", g.apiBase)
	resp, err := g.do(ctx, conn, http.MethodPost, insertURL, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", errors.NewAppError(errors.ErrGatewayUnavailable,
			fmt.Sprintf("Event insert failed (%d): %s", resp.StatusCode, truncate(string(respBody), 200)), nil)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable, "Event insert response unreadable", err)
	}
	if created.ID == "" {
		return "", errors.NewAppError(errors.ErrGatewayUnavailable, "Event insert returned no id", nil)
	}

	logger.Info("CalendarGateway:InsertEvent:Success", "user_id", ownerID, "event_id", created.ID)
	return created.ID, nil
}

func (g *googleGateway) DeleteEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error {
	conn, err := g.connection(ctx, ownerID)
	if err != nil {
		return err
	}

	deleteURL := fmt.Sprintf("%s/calendars/primary/events/%s", g.apiBase, url.PathEscape(eventID))
	resp, err := g.do(ctx, conn, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound, http.StatusGone:
		// Already removed on the provider side; deletion is idempotent.
		logger.Warn("CalendarGateway:DeleteEvent:AlreadyGone", "user_id", ownerID, "event_id", eventID)
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return errors.NewAppError(errors.ErrGatewayUnavailable,
			fmt.Sprintf("Event delete failed (%d): %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}
}
