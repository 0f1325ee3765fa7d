package handler

import (
	"healthcore/internal/usecase"
	"healthcore/pkg/response"

	"github.com/labstack/echo/v4"
)

type MissionHandler struct {
	missionUseCase usecase.MissionUseCase
}

func NewMissionHandler(missionUseCase usecase.MissionUseCase) *MissionHandler {
	return &MissionHandler{
		missionUseCase: missionUseCase,
	}
}

func (h *MissionHandler) GetAllMissions(c echo.Context) error {
	return response.Success(c, h.missionUseCase.GetAllMissions(c.Request().Context()))
}

func (h *MissionHandler) GetMissions(c echo.Context) error {
	missions, err := h.missionUseCase.GetMissions(c.Request().Context(), c.Param("window"), c.Param("level"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, missions)
}

func (h *MissionHandler) GetMissionByID(c echo.Context) error {
	mission, err := h.missionUseCase.GetMissionByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, mission)
}

func (h *MissionHandler) GetMissionsByCategory(c echo.Context) error {
	missions, err := h.missionUseCase.GetMissionsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, missions)
}

func (h *MissionHandler) GetMissionsByReceptor(c echo.Context) error {
	missions, err := h.missionUseCase.GetMissionsByReceptor(c.Request().Context(), c.Param("receptor"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, missions)
}

func (h *MissionHandler) GetTimeWindows(c echo.Context) error {
	return response.Success(c, h.missionUseCase.GetTimeWindows(c.Request().Context()))
}
