package router

import (
	"github.com/labstack/echo/v4"

	"healthcore/internal/adapter/api/handler"
	"healthcore/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up the game event push channel
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}
