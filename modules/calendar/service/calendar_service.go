package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-booking-assistant/core/cache"
	"go-booking-assistant/core/config"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/logger"
	"go-booking-assistant/core/utils"
	"go-booking-assistant/modules/calendar/entity"
	"go-booking-assistant/modules/calendar/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	connectLinkTTL       = 24 * time.Hour
	connectLinkKeyPrefix = "calendar:link:"

	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

type CalendarService interface {
	// CreateConnectLink mints a one-time link token for the owner so
	// the OAuth flow can be started from a chat message.
	CreateConnectLink(ctx context.Context, userID uuid.UUID) (string, error)
	// AuthURL resolves a link token to the Google consent URL and
	// consumes the token.
	AuthURL(ctx context.Context, linkToken string) (string, error)
	HandleCallback(ctx context.Context, state, code string) (*entity.CalendarConnection, error)
	Status(ctx context.Context, userID uuid.UUID) (*entity.CalendarConnection, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error
}

type calendarService struct {
	repo  repository.CalendarRepository
	cache cache.Cache
	http  *http.Client
}

func NewCalendarService(repo repository.CalendarRepository, c cache.Cache) CalendarService {
	return &calendarService{
		repo:  repo,
		cache: c,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

func oauthConfig() *oauth2.Config {
	cfg := config.Get()
	return &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		RedirectURL:  cfg.GoogleAPI.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar.events",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: defaultTokenURL,
		},
	}
}

func (s *calendarService) CreateConnectLink(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := utils.GenerateLinkToken()
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to generate connect token", err)
	}
	if err := s.cache.Set(ctx, connectLinkKeyPrefix+token, userID.String(), connectLinkTTL); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to store connect token", err)
	}
	logger.Info("CalendarService:CreateConnectLink:Success", "user_id", userID)
	return token, nil
}

func (s *calendarService) AuthURL(ctx context.Context, linkToken string) (string, error) {
	userIDRaw, err := s.cache.Get(ctx, connectLinkKeyPrefix+linkToken)
	if err != nil {
		if err == cache.ErrMiss {
			return "", errors.NewAppError(errors.ErrNotFound, "Connect link is invalid or expired", nil)
		}
		return "", err
	}
	if _, err := uuid.Parse(userIDRaw); err != nil {
		return "", errors.NewAppError(errors.ErrNotFound, "Connect link is invalid or expired", nil)
	}

	// The link token doubles as OAuth state; it stays in Redis until
	// the callback consumes it.
	url := oauthConfig().AuthCodeURL(linkToken,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return url, nil
}

func (s *calendarService) HandleCallback(ctx context.Context, state, code string) (*entity.CalendarConnection, error) {
	key := connectLinkKeyPrefix + state
	userIDRaw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == cache.ErrMiss {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "OAuth state is invalid or expired", nil)
		}
		return nil, err
	}
	userID, err := uuid.Parse(userIDRaw)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "OAuth state is invalid or expired", nil)
	}

	token, err := oauthConfig().Exchange(ctx, code)
	if err != nil {
		logger.Error("CalendarService:HandleCallback:Exchange:Error", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Failed to exchange authorization code", err)
	}

	email, err := s.fetchEmail(ctx, token.AccessToken)
	if err != nil {
		logger.Warn("CalendarService:HandleCallback:Userinfo:Error", "user_id", userID, "error", err)
	}

	conn := &entity.CalendarConnection{
		UserID:            userID,
		Provider:          entity.ProviderGoogle,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		TokenExpiresAt:    token.Expiry,
		CalendarEmail:     email,
		IntegrationStatus: entity.StatusConnected,
	}
	saved, err := s.repo.SaveConnection(ctx, conn)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to save calendar connection", err)
	}

	// One-time use: burn the link now that the connection exists.
	if err := s.cache.Del(ctx, key); err != nil {
		logger.Warn("CalendarService:HandleCallback:BurnLink:Error", "user_id", userID, "error", err)
	}

	logger.Info("CalendarService:HandleCallback:Success", "user_id", userID, "email", email)
	return saved, nil
}

func (s *calendarService) fetchEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	return info.Email, nil
}

func (s *calendarService) Status(ctx context.Context, userID uuid.UUID) (*entity.CalendarConnection, error) {
	conn, err := s.repo.GetConnectionByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return &entity.CalendarConnection{
			UserID:            userID,
			Provider:          entity.ProviderGoogle,
			IntegrationStatus: entity.StatusNotConnected,
		}, nil
	}
	return conn, nil
}

func (s *calendarService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	conn, err := s.repo.GetConnectionByUser(ctx, userID)
	if err != nil {
		return err
	}
	if conn == nil || !conn.IsConnected() {
		return errors.NewAppError(errors.ErrNotFound, "No calendar connection to disconnect", nil)
	}

	// Best effort; revocation failure must not block the local
	// disconnect.
	if conn.RefreshToken != "" {
		s.revoke(ctx, conn.RefreshToken)
	}

	if err := s.repo.Disconnect(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to disconnect calendar", err)
	}
	logger.Info("CalendarService:Disconnect:Success", "user_id", userID)
	return nil
}

func (s *calendarService) revoke(ctx context.Context, token string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL+"?token="+token, nil)
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.http.Do(req)
	if err != nil {
		logger.Warn("CalendarService:Revoke:Error", "error", err)
		return
	}
	resp.Body.Close()
}
