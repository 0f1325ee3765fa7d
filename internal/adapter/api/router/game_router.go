package router

import (
	"healthcore/internal/adapter/api/handler"
	"healthcore/internal/adapter/api/middleware"
	"healthcore/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupGameRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	gameHandler := handler.GetGameHandler()

	// All game endpoints act on the caller's own state
	gameGroup := e.Group("/v1/game")
	gameGroup.Use(authMiddleware.Authenticate)
	gameGroup.Use(middleware.RateLimit(limiter, ratelimit.ActionDefault))

	gameGroup.GET("/state", gameHandler.GetState)
	gameGroup.GET("/levels/:window", gameHandler.GetLevelProgress)
	gameGroup.GET("/history", gameHandler.GetHistory)
	gameGroup.GET("/history/:date", gameHandler.GetArchivedDay)
	gameGroup.GET("/achievements", gameHandler.GetAchievements)

	gameGroup.POST("/requirements/complete", gameHandler.CompleteRequirement,
		middleware.RateLimit(limiter, ratelimit.ActionCompleteRequirement))
	gameGroup.POST("/level-up", gameHandler.LevelUp,
		middleware.RateLimit(limiter, ratelimit.ActionLevelUp))
	gameGroup.POST("/reset", gameHandler.ResetGame,
		middleware.RateLimit(limiter, ratelimit.ActionReset))
	gameGroup.DELETE("/state", gameHandler.DeleteState,
		middleware.RateLimit(limiter, ratelimit.ActionReset))
}
