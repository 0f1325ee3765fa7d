package handler

import (
	"healthcore/internal/usecase"
)

var (
	gameHandler    *GameHandler
	missionHandler *MissionHandler
)

func Setup(
	gameUseCase usecase.GameUseCase,
	missionUseCase usecase.MissionUseCase,
) {
	gameHandler = NewGameHandler(gameUseCase)
	missionHandler = NewMissionHandler(missionUseCase)
}

func GetGameHandler() *GameHandler {
	return gameHandler
}

func GetMissionHandler() *MissionHandler {
	return missionHandler
}
