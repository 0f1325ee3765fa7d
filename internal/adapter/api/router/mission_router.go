package router

import (
	"healthcore/internal/adapter/api/handler"
	"healthcore/internal/adapter/api/middleware"
	"healthcore/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupMissionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	missionHandler := handler.GetMissionHandler()

	// The catalog is static content and needs no authentication
	missionGroup := e.Group("/v1/missions")
	missionGroup.Use(middleware.RateLimit(limiter, ratelimit.ActionDefault))

	missionGroup.GET("", missionHandler.GetAllMissions)
	missionGroup.GET("/time-windows", missionHandler.GetTimeWindows)
	missionGroup.GET("/by-id/:id", missionHandler.GetMissionByID)
	missionGroup.GET("/by-category/:category", missionHandler.GetMissionsByCategory)
	missionGroup.GET("/by-receptor/:receptor", missionHandler.GetMissionsByReceptor)
	missionGroup.GET("/:window/:level", missionHandler.GetMissions)
}
