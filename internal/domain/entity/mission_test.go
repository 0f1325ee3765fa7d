package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentTimeWindow(t *testing.T) {
	tests := map[int]TimeWindow{
		6:  TimeWindowMorning,
		9:  TimeWindowMorning,
		10: TimeWindowMidday,
		13: TimeWindowMidday,
		14: TimeWindowAfternoon,
		18: TimeWindowEvening,
		21: TimeWindowEvening,
		22: TimeWindowEvening,
		2:  TimeWindowEvening,
	}
	for hour, want := range tests {
		assert.Equal(t, want, CurrentTimeWindow(hour), "hour %d", hour)
	}
}

func TestParseLevel(t *testing.T) {
	for _, in := range []string{"1", "level1", "Level1", " 1 "} {
		l, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, Level1, l)
	}

	_, err := ParseLevel("4")
	assert.Error(t, err)
	_, err = ParseLevel("one")
	assert.Error(t, err)

	assert.Equal(t, "Peak Performance", Level3.Name())
	assert.Equal(t, "morning_level2", BucketKey(TimeWindowMorning, Level2))
}

func TestParseTimeWindow(t *testing.T) {
	w, err := ParseTimeWindow("Afternoon")
	assert.NoError(t, err)
	assert.Equal(t, TimeWindowAfternoon, w)

	_, err = ParseTimeWindow("night")
	assert.Error(t, err)
}

func TestMissionProgressPercentageRounds(t *testing.T) {
	p := NewMissionProgress("m", 3)
	assert.True(t, p.MarkRequirement("m-req-0"))
	assert.Equal(t, 33, p.CompletionPercentage)
	assert.True(t, p.MarkRequirement("m-req-1"))
	assert.Equal(t, 67, p.CompletionPercentage)
	assert.False(t, p.MarkRequirement("m-req-1"))
	assert.False(t, p.AllRequirementsDone())
}

func TestGameStateCloneIsDeep(t *testing.T) {
	now := time.Now()
	s := &GameState{
		Levels: map[string]*LevelBucket{
			"morning_level1": {TimeWindow: TimeWindowMorning, Level: Level1, Total: 4, LeveledUpAt: &now},
		},
		Progress: map[string]*MissionProgress{
			"m": {MissionID: "m", CompletedRequirements: map[string]bool{"m-req-0": true}},
		},
	}

	c := s.Clone()
	c.Levels["morning_level1"].Completed = 3
	c.Progress["m"].CompletedRequirements["m-req-1"] = true

	assert.Zero(t, s.Levels["morning_level1"].Completed)
	assert.Len(t, s.Progress["m"].CompletedRequirements, 1)
	assert.NotSame(t, s.Levels["morning_level1"].LeveledUpAt, c.Levels["morning_level1"].LeveledUpAt)
}
