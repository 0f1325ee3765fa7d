package usecase

import (
	"context"
	"strings"
	"time"

	"healthcore/internal/domain/catalog"
	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"
)

type MissionUseCase interface {
	GetAllMissions(ctx context.Context) map[entity.TimeWindow]map[string][]*entity.Mission
	GetMissions(ctx context.Context, window, level string) ([]*entity.Mission, error)
	GetMissionByID(ctx context.Context, missionID string) (*entity.Mission, error)
	GetMissionsByCategory(ctx context.Context, category string) ([]*entity.Mission, error)
	GetMissionsByReceptor(ctx context.Context, receptor string) ([]*entity.Mission, error)
	GetTimeWindows(ctx context.Context) *TimeWindowsInfo
}

type TimeWindowInfo struct {
	TimeWindow entity.TimeWindow  `json:"timeWindow"`
	Hours      entity.WindowHours `json:"hours"`
}

type TimeWindowsInfo struct {
	Current    entity.TimeWindow        `json:"current"`
	Windows    []TimeWindowInfo         `json:"windows"`
	LevelNames map[entity.Level]string  `json:"levelNames"`
	Categories []entity.MissionCategory `json:"categories"`
}

type missionUseCase struct {
	catalog  *catalog.Catalog
	location *time.Location
	now      func() time.Time
}

func NewMissionUseCase(c *catalog.Catalog, location *time.Location, now func() time.Time) MissionUseCase {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &missionUseCase{
		catalog:  c,
		location: location,
		now:      now,
	}
}

func (uc *missionUseCase) GetAllMissions(ctx context.Context) map[entity.TimeWindow]map[string][]*entity.Mission {
	return uc.catalog.All()
}

func (uc *missionUseCase) GetMissions(ctx context.Context, window, level string) ([]*entity.Mission, error) {
	w, err := entity.ParseTimeWindow(window)
	if err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	l, err := entity.ParseLevel(level)
	if err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	return nonNil(uc.catalog.Missions(w, l)), nil
}

func (uc *missionUseCase) GetMissionByID(ctx context.Context, missionID string) (*entity.Mission, error) {
	m, ok := uc.catalog.Mission(missionID)
	if !ok {
		return nil, errors.UnknownMission(missionID)
	}
	return m, nil
}

func (uc *missionUseCase) GetMissionsByCategory(ctx context.Context, category string) ([]*entity.Mission, error) {
	c := entity.MissionCategory(strings.ToLower(category))
	if !c.Valid() {
		return nil, errors.BadRequest("unknown mission category: "+category, nil)
	}
	return nonNil(uc.catalog.ByCategory(c)), nil
}

func (uc *missionUseCase) GetMissionsByReceptor(ctx context.Context, receptor string) ([]*entity.Mission, error) {
	if strings.TrimSpace(receptor) == "" {
		return nil, errors.BadRequest("receptor is required", nil)
	}
	return nonNil(uc.catalog.ByReceptor(receptor)), nil
}

func (uc *missionUseCase) GetTimeWindows(ctx context.Context) *TimeWindowsInfo {
	info := &TimeWindowsInfo{
		Current:    entity.CurrentTimeWindow(uc.now().In(uc.location).Hour()),
		LevelNames: entity.LevelNames,
		Categories: uc.catalog.Categories(),
	}
	for _, w := range entity.TimeWindows {
		info.Windows = append(info.Windows, TimeWindowInfo{TimeWindow: w, Hours: entity.TimeWindowHours[w]})
	}
	return info
}

func nonNil(ms []*entity.Mission) []*entity.Mission {
	if ms == nil {
		return []*entity.Mission{}
	}
	return ms
}
