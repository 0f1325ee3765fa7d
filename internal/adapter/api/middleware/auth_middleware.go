package middleware

import (
	"strings"

	"healthcore/internal/usecase"
	"healthcore/pkg/errors"
	"healthcore/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	UserIDHeader = "X-User-ID"
	contextUID   = "uid"
)

type AuthMiddleware struct {
	authClient usecase.FirebaseAuthClient
	logger     logger.Logger
}

// NewAuthMiddleware verifies Firebase ID tokens. A nil authClient trusts the
// X-User-ID header instead, which is only meant for local development.
func NewAuthMiddleware(authClient usecase.FirebaseAuthClient, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthMiddleware{
		authClient: authClient,
		logger:     log,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.authClient == nil {
			return m.fromHeader(c, next)
		}

		idToken, err := bearerToken(c)
		if err != nil {
			return err
		}

		uid, err := m.authClient.VerifyToken(c.Request().Context(), idToken)
		if err != nil {
			m.logger.Warn("token verification failed", "path", c.Path(), "error", err)
			return errors.Unauthorized("Invalid token", err)
		}

		c.Set(contextUID, uid)
		return next(c)
	}
}

func (m *AuthMiddleware) fromHeader(c echo.Context, next echo.HandlerFunc) error {
	uid := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
	if uid == "" {
		// Browsers cannot set headers on a websocket handshake.
		uid = strings.TrimSpace(c.QueryParam("user_id"))
	}
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	c.Set(contextUID, uid)
	return next(c)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

// UserID returns the authenticated user, or "" outside Authenticate.
func UserID(c echo.Context) string {
	uid, _ := c.Get(contextUID).(string)
	return uid
}
