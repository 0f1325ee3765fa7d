package router

import (
	"healthcore/internal/adapter/api/handler"
	"healthcore/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
}

func SetupMetricsRouter(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/metrics", m.Handler())
}
