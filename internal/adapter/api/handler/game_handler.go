package handler

import (
	"net/http"

	"healthcore/internal/adapter/api/middleware"
	"healthcore/internal/usecase"
	"healthcore/pkg/errors"
	"healthcore/pkg/response"
	"healthcore/pkg/utils"

	"github.com/labstack/echo/v4"
)

type GameHandler struct {
	gameUseCase usecase.GameUseCase
}

func NewGameHandler(gameUseCase usecase.GameUseCase) *GameHandler {
	return &GameHandler{
		gameUseCase: gameUseCase,
	}
}

func (h *GameHandler) GetState(c echo.Context) error {
	userID := middleware.UserID(c)

	state, err := h.gameUseCase.GetState(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, state)
}

func (h *GameHandler) GetLevelProgress(c echo.Context) error {
	userID := middleware.UserID(c)
	window := c.Param("window")

	progress, err := h.gameUseCase.GetLevelProgress(c.Request().Context(), userID, window)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, progress)
}

func (h *GameHandler) CompleteRequirement(c echo.Context) error {
	userID := middleware.UserID(c)

	var req usecase.CompleteRequirementRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.gameUseCase.CompleteRequirement(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *GameHandler) LevelUp(c echo.Context) error {
	userID := middleware.UserID(c)

	var req usecase.LevelUpRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.gameUseCase.LevelUp(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *GameHandler) ResetGame(c echo.Context) error {
	userID := middleware.UserID(c)

	var req usecase.ResetGameRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	state, err := h.gameUseCase.ResetGame(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, state)
}

func (h *GameHandler) GetAchievements(c echo.Context) error {
	userID := middleware.UserID(c)

	achievements, err := h.gameUseCase.GetAchievements(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, achievements)
}

// DeleteState wipes the caller's stored state. It takes ?confirm=true
// rather than a body.
func (h *GameHandler) DeleteState(c echo.Context) error {
	userID := middleware.UserID(c)
	req := usecase.ResetGameRequest{Confirm: c.QueryParam("confirm") == "true"}

	if err := h.gameUseCase.DeleteGame(c.Request().Context(), userID, req); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetHistory lists archived days, newest first.
func (h *GameHandler) GetHistory(c echo.Context) error {
	userID := middleware.UserID(c)
	pagination := utils.GetPaginationParams(c)

	dates, err := h.gameUseCase.GetHistory(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	newestFirst := make([]string, len(dates))
	for i, d := range dates {
		newestFirst[len(dates)-1-i] = d
	}

	return response.Paginated(c, utils.Paginate(newestFirst, pagination), int64(len(dates)), pagination.Page, pagination.PageSize)
}

func (h *GameHandler) GetArchivedDay(c echo.Context) error {
	userID := middleware.UserID(c)
	date := c.Param("date")

	state, err := h.gameUseCase.GetArchivedDay(c.Request().Context(), userID, date)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, state)
}
