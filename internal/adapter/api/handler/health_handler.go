package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	storageBackend string
	syncEnabled    bool
	startedAt      time.Time
}

var healthHandler *HealthHandler

func NewHealthHandler(storageBackend string, syncEnabled bool) *HealthHandler {
	return &HealthHandler{
		storageBackend: storageBackend,
		syncEnabled:    syncEnabled,
		startedAt:      time.Now(),
	}
}

func SetupHealthHandler(storageBackend string, syncEnabled bool) {
	healthHandler = NewHealthHandler(storageBackend, syncEnabled)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"time":    time.Now().Format(time.RFC3339),
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"storage": h.storageBackend,
		"sync":    h.syncEnabled,
	})
}
