package usecase

import (
	"context"
	"testing"
	"time"

	"healthcore/internal/domain/catalog"
	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMissionUseCase() MissionUseCase {
	now := func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }
	return NewMissionUseCase(catalog.MustDefault(), time.UTC, now)
}

func TestGetMissions(t *testing.T) {
	uc := newMissionUseCase()
	ctx := context.Background()

	ms, err := uc.GetMissions(ctx, "morning", "1")
	require.NoError(t, err)
	assert.Len(t, ms, 4)

	ms, err = uc.GetMissions(ctx, "evening", "level3")
	require.NoError(t, err)
	assert.Len(t, ms, 3)

	_, err = uc.GetMissions(ctx, "night", "1")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
	_, err = uc.GetMissions(ctx, "morning", "9")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestGetMissionByID(t *testing.T) {
	uc := newMissionUseCase()

	m, err := uc.GetMissionByID(context.Background(), "midday-l3-hormone")
	require.NoError(t, err)
	assert.Equal(t, 140.0, m.BasePoints)

	_, err = uc.GetMissionByID(context.Background(), "midday-l9-nothing")
	assert.True(t, errors.Is(err, errors.CodeUnknownMission))
}

func TestMissionFilters(t *testing.T) {
	uc := newMissionUseCase()
	ctx := context.Background()

	ms, err := uc.GetMissionsByCategory(ctx, "Protein")
	require.NoError(t, err)
	for _, m := range ms {
		assert.Equal(t, entity.CategoryProtein, m.Category)
	}
	assert.NotEmpty(t, ms)

	_, err = uc.GetMissionsByCategory(ctx, "candy")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	ms, err = uc.GetMissionsByReceptor(ctx, "mTOR")
	require.NoError(t, err)
	assert.Len(t, ms, 3)

	ms, err = uc.GetMissionsByReceptor(ctx, "unknown-receptor")
	require.NoError(t, err)
	assert.NotNil(t, ms)
	assert.Empty(t, ms)
}

func TestGetTimeWindows(t *testing.T) {
	info := newMissionUseCase().GetTimeWindows(context.Background())
	assert.Equal(t, entity.TimeWindowAfternoon, info.Current)
	assert.Len(t, info.Windows, 4)
	assert.Equal(t, "Optimization", info.LevelNames[entity.Level2])
	require.NotEmpty(t, info.Categories)
	assert.IsIncreasing(t, info.Categories)
	for _, c := range info.Categories {
		assert.NotEmpty(t, catalog.MustDefault().ByCategory(c), c)
	}
}
