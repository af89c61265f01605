package controller

import (
	"fmt"
	"net/http"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/controller"
	"go-booking-assistant/core/errors"
	"go-booking-assistant/core/middleware"
	"go-booking-assistant/modules/calendar/dto"
	"go-booking-assistant/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// CalendarController handles calendar connection HTTP requests
type CalendarController struct {
	controller.BaseController
	CalendarService service.CalendarService
}

func NewCalendarController(svc service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController:  controller.NewBaseController(),
		CalendarService: svc,
	}
}

// CreateConnectLink handles POST /calendar/connect-link
func (c *CalendarController) CreateConnectLink(ctx echo.Context) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	token, err := c.CalendarService.CreateConnectLink(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	connectURL := ""
	if cfg, ok := config.GetSafe(); ok && cfg.FrontendURL != "" {
		connectURL = fmt.Sprintf("%s/calendar/connect/%s", cfg.FrontendURL, token)
	}

	return c.SuccessResponse(ctx, dto.ConnectLinkResponse{
		Token:      token,
		ConnectURL: connectURL,
		ExpiresIn:  "24h",
	}, "Connect link created")
}

// StartOAuth handles GET /calendar/connect/:token (public, link-gated)
func (c *CalendarController) StartOAuth(ctx echo.Context) error {
	linkToken := ctx.Param("token")
	if linkToken == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Missing connect token")
	}

	authURL, err := c.CalendarService.AuthURL(ctx.Request().Context(), linkToken)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return ctx.Redirect(http.StatusFound, authURL)
}

// OAuthCallback handles GET /calendar/oauth/callback (public)
func (c *CalendarController) OAuthCallback(ctx echo.Context) error {
	state := ctx.QueryParam("state")
	code := ctx.QueryParam("code")
	if state == "" || code == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Missing state or code parameter")
	}

	conn, err := c.CalendarService.HandleCallback(ctx.Request().Context(), state, code)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	if cfg, ok := config.GetSafe(); ok && cfg.FrontendURL != "" {
		return ctx.Redirect(http.StatusFound, cfg.FrontendURL+"/calendar/connected")
	}
	return c.SuccessResponse(ctx, dto.ConnectionStatusResponse{
		Provider:          conn.Provider,
		IntegrationStatus: conn.IntegrationStatus,
		CalendarEmail:     conn.CalendarEmail,
	}, "Calendar connected")
}

// Status handles GET /calendar/status
func (c *CalendarController) Status(ctx echo.Context) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	conn, err := c.CalendarService.Status(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	resp := dto.ConnectionStatusResponse{
		Provider:          conn.Provider,
		IntegrationStatus: conn.IntegrationStatus,
		CalendarEmail:     conn.CalendarEmail,
	}
	if !conn.TokenExpiresAt.IsZero() {
		t := conn.TokenExpiresAt
		resp.TokenExpiresAt = &t
	}
	return c.SuccessResponse(ctx, resp, "Success")
}

// Disconnect handles DELETE /calendar/connection
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if err := c.CalendarService.Disconnect(ctx.Request().Context(), userID); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "Calendar disconnected")
}
