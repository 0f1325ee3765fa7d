package service

import (
	"math/rand"
	"testing"
	"time"

	"healthcore/internal/domain/catalog"
	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(t *testing.T) (*MissionTracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)}
	return NewMissionTracker(catalog.MustDefault(), clock.Now), clock
}

func completeMission(t *testing.T, tr *MissionTracker, state *entity.GameState, missionID string) {
	t.Helper()
	m, ok := tr.Catalog().Mission(missionID)
	require.True(t, ok)
	for _, r := range m.Requirements {
		_, err := tr.CompleteRequirement(state, missionID, r.ID, m.PointsPerRequirement())
		require.NoError(t, err)
	}
}

func TestNewGameStateBuildsAllBuckets(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	assert.NotEmpty(t, state.ID)
	assert.Len(t, state.Levels, 12)
	assert.Equal(t, 4, state.Bucket(entity.TimeWindowMorning, entity.Level1).Total)
	assert.Equal(t, 3, state.Bucket(entity.TimeWindowEvening, entity.Level3).Total)
	assert.Empty(t, state.Progress)
}

func TestCompleteSingleRequirementMission(t *testing.T) {
	tr, clock := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	res, err := tr.CompleteRequirement(state, "morning-l1-hydration", "morning-l1-hydration-req-0", 50)
	require.NoError(t, err)

	assert.True(t, res.MissionCompleted)
	assert.False(t, res.LevelUpAvailable)
	assert.Equal(t, 50.0, res.PointsEarned)
	assert.Equal(t, 100, res.Progress.CompletionPercentage)
	require.NotNil(t, res.Progress.CompletedAt)
	assert.Equal(t, clock.Now(), *res.Progress.CompletedAt)

	assert.Equal(t, 50.0, state.DailyPoints)
	assert.Equal(t, 50.0, state.TotalPoints)
	assert.Equal(t, 1, state.Bucket(entity.TimeWindowMorning, entity.Level1).Completed)
}

func TestCompleteTwoRequirementMission(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	res, err := tr.CompleteRequirement(state, "morning-l1-iron", "morning-l1-iron-req-0", 40)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Progress.CompletionPercentage)
	assert.False(t, res.MissionCompleted)
	assert.False(t, res.Progress.Completed)
	assert.Equal(t, 40.0, state.DailyPoints)
	assert.Equal(t, 0, state.Bucket(entity.TimeWindowMorning, entity.Level1).Completed)

	res, err = tr.CompleteRequirement(state, "morning-l1-iron", "morning-l1-iron-req-1", 40)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress.CompletionPercentage)
	assert.True(t, res.MissionCompleted)
	assert.Equal(t, 80.0, state.DailyPoints)
	assert.Equal(t, 80.0, res.Progress.PointsEarned)
}

func TestFractionalPointsArePreserved(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	third := 100.0 / 3
	_, err := tr.CompleteRequirement(state, "morning-l2-cortisol", "morning-l2-cortisol-req-0", third)
	require.NoError(t, err)
	_, err = tr.CompleteRequirement(state, "morning-l2-gut", "morning-l2-gut-req-0", third)
	require.NoError(t, err)

	assert.InDelta(t, 2*third, state.DailyPoints, 1e-9)
	assert.NotEqual(t, 67.0, state.DailyPoints)
}

func TestDuplicateCompletionAwardsOnce(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	_, err := tr.CompleteRequirement(state, "morning-l1-iron", "morning-l1-iron-req-0", 40)
	require.NoError(t, err)

	before := state.Clone()
	_, err = tr.CompleteRequirement(state, "morning-l1-iron", "morning-l1-iron-req-0", 40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeDuplicateCompletion))

	assert.Equal(t, 40.0, state.DailyPoints)
	assert.Equal(t, before, state)
}

func TestCompleteRequirementErrors(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	tests := []struct {
		name          string
		missionID     string
		requirementID string
		points        float64
		code          string
	}{
		{"unknown mission", "night-l1-snack", "night-l1-snack-req-0", 10, errors.CodeUnknownMission},
		{"requirement of another mission", "morning-l1-hydration", "morning-l1-iron-req-0", 10, errors.CodeUnknownRequirement},
		{"requirement index out of range", "morning-l1-hydration", "morning-l1-hydration-req-1", 10, errors.CodeUnknownRequirement},
		{"negative points", "morning-l1-hydration", "morning-l1-hydration-req-0", -5, errors.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.CompleteRequirement(state, tt.missionID, tt.requirementID, tt.points)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), err.Error())
		})
	}

	assert.Zero(t, state.DailyPoints)
	assert.Empty(t, state.Progress)
}

func TestOrderIndependence(t *testing.T) {
	tr, _ := newTestTracker(t)
	rng := rand.New(rand.NewSource(42))

	for _, m := range tr.Catalog().List() {
		state := tr.NewGameState("user-1", "2024-03-10")

		reqs := append([]entity.Requirement(nil), m.Requirements...)
		rng.Shuffle(len(reqs), func(i, j int) { reqs[i], reqs[j] = reqs[j], reqs[i] })

		for _, r := range reqs {
			_, err := tr.CompleteRequirement(state, m.ID, r.ID, m.PointsPerRequirement())
			require.NoError(t, err)
		}

		p := state.MissionProgress(m.ID)
		require.NotNil(t, p, m.ID)
		assert.True(t, p.Completed, m.ID)
		assert.Equal(t, 100, p.CompletionPercentage, m.ID)
		assert.InDelta(t, m.BasePoints, state.DailyPoints, 1e-9, m.ID)
		assert.Equal(t, 1, state.Bucket(m.TimeWindow, m.Level).Completed, m.ID)
	}
}

func TestLevelUpFlow(t *testing.T) {
	tr, clock := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	_, err := tr.LevelUp(state, entity.Level1, entity.TimeWindowMorning)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodePreconditionFailed))

	missions := tr.Catalog().Missions(entity.TimeWindowMorning, entity.Level1)
	require.Len(t, missions, 4)

	for i, m := range missions {
		completeMission(t, tr, state, m.ID)
		bucket := state.Bucket(entity.TimeWindowMorning, entity.Level1)
		assert.Equal(t, i+1, bucket.Completed)
		assert.Equal(t, i == len(missions)-1, bucket.CanLevelUp)
	}
	assert.Equal(t, entity.BucketReadyToLevelUp, state.Bucket(entity.TimeWindowMorning, entity.Level1).Status())
	assert.False(t, tr.IsLevelUnlocked(state, entity.TimeWindowMorning, entity.Level2))

	pointsBefore := state.DailyPoints
	clock.Advance(time.Minute)

	res, err := tr.LevelUp(state, entity.Level1, entity.TimeWindowMorning)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Bonus)
	assert.Equal(t, clock.Now(), res.LeveledUpAt)

	bucket := state.Bucket(entity.TimeWindowMorning, entity.Level1)
	assert.False(t, bucket.CanLevelUp)
	require.NotNil(t, bucket.LeveledUpAt)
	assert.Equal(t, entity.BucketLeveledUp, bucket.Status())
	assert.Equal(t, 1, state.TotalLevelUps)
	assert.Equal(t, pointsBefore+100, state.DailyPoints)
	assert.True(t, tr.IsLevelUnlocked(state, entity.TimeWindowMorning, entity.Level2))

	_, err = tr.LevelUp(state, entity.Level1, entity.TimeWindowMorning)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodePreconditionFailed))
	assert.Equal(t, 1, state.TotalLevelUps)
	assert.Equal(t, pointsBefore+100, state.DailyPoints)
}

func TestLevelUpBonusScalesWithLevel(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	for _, m := range tr.Catalog().Missions(entity.TimeWindowEvening, entity.Level3) {
		completeMission(t, tr, state, m.ID)
	}

	res, err := tr.LevelUp(state, entity.Level3, entity.TimeWindowEvening)
	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Bonus)
}

func TestLevelUpRejectsInvalidInput(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	_, err := tr.LevelUp(state, entity.Level(7), entity.TimeWindowMorning)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = tr.LevelUp(state, entity.Level1, entity.TimeWindow("night"))
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestCanLevelUpIsRaisedOnce(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	raised := 0
	for _, m := range tr.Catalog().Missions(entity.TimeWindowMidday, entity.Level2) {
		for _, r := range m.Requirements {
			res, err := tr.CompleteRequirement(state, m.ID, r.ID, 1)
			require.NoError(t, err)
			if res.LevelUpAvailable {
				raised++
			}
		}
	}
	assert.Equal(t, 1, raised)

	bucket := state.Bucket(entity.TimeWindowMidday, entity.Level2)
	assert.Equal(t, bucket.Total, bucket.Completed)
	assert.False(t, bucket.RecordMissionCompleted())
	assert.Equal(t, bucket.Total, bucket.Completed)
}

func TestResetKeepsLifetimeTotals(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	for _, m := range tr.Catalog().Missions(entity.TimeWindowMorning, entity.Level1) {
		completeMission(t, tr, state, m.ID)
	}
	_, err := tr.LevelUp(state, entity.Level1, entity.TimeWindowMorning)
	require.NoError(t, err)

	lifetime := state.TotalPoints
	id := state.ID
	tr.Reset(state)

	assert.Equal(t, id, state.ID)
	assert.Zero(t, state.DailyPoints)
	assert.Equal(t, lifetime, state.TotalPoints)
	assert.Equal(t, 1, state.TotalLevelUps)
	assert.Empty(t, state.Progress)

	totals := tr.Catalog().BucketTotals()
	require.Len(t, state.Levels, len(totals))
	for key, b := range state.Levels {
		assert.Equal(t, totals[key], b.Total, key)
		assert.Zero(t, b.Completed, key)
		assert.False(t, b.CanLevelUp, key)
		assert.Nil(t, b.LeveledUpAt, key)
	}

	// Requirements can be earned again after a reset.
	_, err = tr.CompleteRequirement(state, "morning-l1-hydration", "morning-l1-hydration-req-0", 50)
	assert.NoError(t, err)
}

func TestRollOver(t *testing.T) {
	tr, clock := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	completeMission(t, tr, state, "morning-l1-hydration")
	assert.Equal(t, 1, state.StreakDays)
	assert.Equal(t, "2024-03-10", state.LastActiveDate)

	assert.False(t, tr.RollOver(state, "2024-03-10"))
	assert.False(t, tr.RollOver(state, "2024-03-09"))

	clock.Advance(24 * time.Hour)
	require.True(t, tr.RollOver(state, "2024-03-11"))
	assert.Equal(t, "2024-03-11", state.Date)
	assert.Zero(t, state.DailyPoints)
	assert.Equal(t, 50.0, state.TotalPoints)
	assert.Empty(t, state.Progress)
	assert.Equal(t, 1, state.StreakDays)

	completeMission(t, tr, state, "morning-l1-hydration")
	assert.Equal(t, 2, state.StreakDays)

	// Skipping 2024-03-12 breaks the streak.
	require.True(t, tr.RollOver(state, "2024-03-13"))
	assert.Zero(t, state.StreakDays)

	completeMission(t, tr, state, "midday-l1-hydration")
	assert.Equal(t, 1, state.StreakDays)
}

func TestWindowProgress(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := tr.NewGameState("user-1", "2024-03-10")

	completeMission(t, tr, state, "afternoon-l1-hydration")
	completeMission(t, tr, state, "afternoon-l2-focus")

	wp, err := tr.WindowProgress(state, entity.TimeWindowAfternoon)
	require.NoError(t, err)
	assert.Equal(t, 10, wp.Total)
	assert.Equal(t, 2, wp.Completed)
	assert.InDelta(t, 0.2, wp.Fraction, 1e-9)
	require.Len(t, wp.Levels, 3)
	assert.Equal(t, "Foundation", wp.Levels[0].Name)
	assert.True(t, wp.Levels[0].Unlocked)
	assert.False(t, wp.Levels[1].Unlocked)
	assert.Equal(t, 1, wp.Levels[1].Completed)

	_, err = tr.WindowProgress(state, "night")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestBucketForFillsMissingBuckets(t *testing.T) {
	tr, _ := newTestTracker(t)
	state := &entity.GameState{UserID: "user-1", Date: "2024-03-10"}

	b := tr.BucketFor(state, entity.TimeWindowMidday, entity.Level1)
	require.NotNil(t, b)
	assert.Equal(t, 4, b.Total)
	assert.Len(t, state.Levels, 12)
}
