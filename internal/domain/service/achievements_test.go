package service

import (
	"testing"
	"time"

	"healthcore/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func achievementIDs(as []entity.Achievement) []string {
	ids := make([]string, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestStreakAchievementUnlocksOnThirdDay(t *testing.T) {
	tr, clock := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	for i, date := range []string{"2024-03-10", "2024-03-11", "2024-03-12"} {
		if i > 0 {
			clock.Advance(24 * time.Hour)
			require.True(t, tr.RollOver(state, date))
		}
		m, _ := tr.Catalog().Mission("morning-l1-hydration")
		var last *CompletionResult
		for _, r := range m.Requirements {
			res, err := tr.CompleteRequirement(state, m.ID, r.ID, 1)
			require.NoError(t, err)
			last = res
		}
		if i < 2 {
			assert.Empty(t, last.Achievements, date)
		} else {
			assert.Equal(t, []string{"streak-3"}, achievementIDs(last.Achievements))
		}
	}

	assert.Equal(t, clock.Now(), state.UnlockedAchievements["streak-3"])

	// Breaking the streak keeps the badge.
	require.True(t, tr.RollOver(state, "2024-03-20"))
	assert.Zero(t, state.StreakDays)
	assert.Contains(t, state.UnlockedAchievements, "streak-3")
}

func TestLevelAndPointsAchievementsOnLevelUp(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")
	state.TotalPoints = 450

	for _, m := range tr.Catalog().Missions(entity.TimeWindowMorning, entity.Level1) {
		for _, r := range m.Requirements {
			res, err := tr.CompleteRequirement(state, m.ID, r.ID, 0)
			require.NoError(t, err)
			assert.Empty(t, res.Achievements)
		}
	}

	res, err := tr.LevelUp(state, entity.Level1, entity.TimeWindowMorning)
	require.NoError(t, err)
	assert.Equal(t, []string{"level-1", "points-500"}, achievementIDs(res.Achievements))
	assert.Len(t, state.UnlockedAchievements, 2)
}

func TestAchievementsUnlockOnce(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	res, err := tr.CompleteRequirement(state, "morning-l1-hydration", "morning-l1-hydration-req-0", 600)
	require.NoError(t, err)
	assert.Equal(t, []string{"points-500"}, achievementIDs(res.Achievements))

	res, err = tr.CompleteRequirement(state, "morning-l1-iron", "morning-l1-iron-req-0", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Achievements)

	tr.Reset(state)
	assert.Contains(t, state.UnlockedAchievements, "points-500")
}

func TestPerfectDayNeedsEveryMission(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	missions := tr.Catalog().List()
	for _, m := range missions[:len(missions)-1] {
		completeMission(t, tr, state, m.ID)
	}
	assert.NotContains(t, state.UnlockedAchievements, "perfect-day")

	last := missions[len(missions)-1]
	var res *CompletionResult
	for _, r := range last.Requirements {
		var err error
		res, err = tr.CompleteRequirement(state, last.ID, r.ID, 0)
		require.NoError(t, err)
	}
	assert.Contains(t, achievementIDs(res.Achievements), "perfect-day")
	assert.Equal(t, len(missions), state.CompletedMissions())
}

func TestAchievementStatuses(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")
	completeMission(t, tr, state, "morning-l1-hydration")

	statuses := tr.AchievementStatuses(state)
	require.Len(t, statuses, len(DefaultAchievements))

	byID := make(map[string]entity.AchievementStatus)
	for _, s := range statuses {
		byID[s.ID] = s
	}

	streak := byID["streak-3"]
	assert.Equal(t, entity.AchievementProgress{Current: 1, Target: 3}, streak.Progress)
	assert.Nil(t, streak.UnlockedAt)

	perfect := byID["perfect-day"]
	assert.Equal(t, 1, perfect.Progress.Current)
	assert.Equal(t, len(tr.Catalog().List()), perfect.Progress.Target)

	// Unlocked badges stay complete after the measure drops.
	state.UnlockedAchievements = map[string]time.Time{"streak-3": time.Now()}
	streak = tr.AchievementStatuses(state)[0]
	assert.True(t, streak.Progress.Completed)
	assert.NotNil(t, streak.UnlockedAt)
}
