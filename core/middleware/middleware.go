package middleware

import (
	"strings"

	"go-booking-assistant/core/config"
	"go-booking-assistant/core/controller"
	"go-booking-assistant/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const UserIDContextKey = "user_id"

type Middleware struct {
	jwtSecret string
}

func NewMiddleware() *Middleware {
	cfg, ok := config.GetSafe()
	secret := ""
	if ok {
		secret = cfg.JWT.Secret
	}
	return &Middleware{jwtSecret: secret}
}

// AuthMiddleware validates the Bearer token and stores the caller's
// user id in the request context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "Authorization header required")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "Authorization header must be 'Bearer {token}'")
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(m.jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return controller.NewErrorResponse(401, errors.ErrTokenExpired, "Invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "Invalid token claims")
			}
			sub, _ := claims["user_id"].(string)
			userID, err := uuid.Parse(sub)
			if err != nil {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "Invalid user id in token")
			}

			c.Set(UserIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id placed by AuthMiddleware.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDContextKey).(uuid.UUID)
	return id, ok
}
