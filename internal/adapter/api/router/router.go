package router

import (
	"healthcore/internal/adapter/api/middleware"
	"healthcore/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupMissionRouter(e, authMiddleware, limiter)
	SetupGameRouter(e, authMiddleware, limiter)
	SetupHealthRouter(e)
}
