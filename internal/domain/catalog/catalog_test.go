package catalog

import (
	"testing"

	"healthcore/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.List(), 40)

	totals := c.BucketTotals()
	assert.Len(t, totals, 12)
	for _, w := range entity.TimeWindows {
		assert.Equal(t, 4, totals[entity.BucketKey(w, entity.Level1)], w)
		assert.Equal(t, 3, totals[entity.BucketKey(w, entity.Level2)], w)
		assert.Equal(t, 3, totals[entity.BucketKey(w, entity.Level3)], w)
	}
}

func TestRequirementIDs(t *testing.T) {
	c := MustDefault()

	m, ok := c.Mission("morning-l1-iron")
	require.True(t, ok)
	require.Len(t, m.Requirements, 2)
	assert.Equal(t, "morning-l1-iron-req-0", m.Requirements[0].ID)
	assert.Equal(t, "morning-l1-iron-req-1", m.Requirements[1].ID)
	assert.Equal(t, 80.0, m.BasePoints)
	assert.Equal(t, 40.0, m.PointsPerRequirement())

	require.NotNil(t, m.Requirements[0].Amount)
	assert.Equal(t, 18.0, *m.Requirements[0].Amount)
	assert.Equal(t, "mg", m.Requirements[0].Unit)
}

func TestMissionsByBucketKeepOrder(t *testing.T) {
	c := MustDefault()

	ms := c.Missions(entity.TimeWindowMorning, entity.Level1)
	require.Len(t, ms, 4)
	assert.Equal(t, "morning-l1-hydration", ms[0].ID)
	assert.Equal(t, "morning-l1-protein", ms[3].ID)

	assert.Len(t, c.ByWindow(entity.TimeWindowEvening), 10)
	assert.Len(t, c.All()[entity.TimeWindowMidday]["level3"], 3)
}

func TestFilters(t *testing.T) {
	c := MustDefault()

	hydration := c.ByCategory(entity.CategoryHydration)
	assert.Len(t, hydration, 4)

	gaba := c.ByReceptor("gaba-receptors")
	require.Len(t, gaba, 2)
	assert.Equal(t, "evening-l1-sleep", gaba[0].ID)

	_, ok := c.Mission("nope")
	assert.False(t, ok)
}

func TestValidation(t *testing.T) {
	base := func() entity.Mission {
		return entity.Mission{
			ID:         "m1",
			TimeWindow: entity.TimeWindowMorning,
			Level:      entity.Level1,
			Category:   entity.CategoryHydration,
			BasePoints: 10,
			Requirements: []entity.Requirement{
				{Type: entity.RequirementAmount, Target: "water"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(m *entity.Mission)
	}{
		{"bad window", func(m *entity.Mission) { m.TimeWindow = "night" }},
		{"bad level", func(m *entity.Mission) { m.Level = 4 }},
		{"negative points", func(m *entity.Mission) { m.BasePoints = -1 }},
		{"no requirements", func(m *entity.Mission) { m.Requirements = nil }},
		{"bad requirement type", func(m *entity.Mission) { m.Requirements[0].Type = "meditation" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(&m)
			_, err := New([]entity.Mission{m})
			assert.Error(t, err)
		})
	}

	_, err := New([]entity.Mission{base(), base()})
	assert.ErrorContains(t, err, "duplicate")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("missions: [unclosed"))
	assert.Error(t, err)
}
