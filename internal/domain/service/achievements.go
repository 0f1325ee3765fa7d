package service

import (
	"math"
	"time"

	"healthcore/internal/domain/entity"
)

// DefaultAchievements is the lifetime badge set, in display order.
var DefaultAchievements = []entity.Achievement{
	{ID: "streak-3", Title: "Warming Up", Description: "Complete a mission three days in a row", Icon: "🔥", Type: entity.AchievementStreak, Requirement: 3},
	{ID: "streak-7", Title: "Steady Week", Description: "Complete a mission seven days in a row", Icon: "📅", Type: entity.AchievementStreak, Requirement: 7},
	{ID: "streak-30", Title: "Habit Formed", Description: "Complete a mission thirty days in a row", Icon: "🏆", Type: entity.AchievementStreak, Requirement: 30},
	{ID: "level-1", Title: "First Level-Up", Description: "Level up any time window", Icon: "⬆️", Type: entity.AchievementLevel, Requirement: 1},
	{ID: "level-12", Title: "Climber", Description: "Level up twelve times", Icon: "🧗", Type: entity.AchievementLevel, Requirement: 12},
	{ID: "level-50", Title: "Summit", Description: "Level up fifty times", Icon: "🏔️", Type: entity.AchievementLevel, Requirement: 50},
	{ID: "points-500", Title: "Point Collector", Description: "Earn 500 lifetime points", Icon: "⭐", Type: entity.AchievementPoints, Requirement: 500},
	{ID: "points-2500", Title: "High Scorer", Description: "Earn 2,500 lifetime points", Icon: "🌟", Type: entity.AchievementPoints, Requirement: 2500},
	{ID: "points-10000", Title: "Legend", Description: "Earn 10,000 lifetime points", Icon: "💫", Type: entity.AchievementPoints, Requirement: 10000},
	{ID: "perfect-day", Title: "Perfect Day", Description: "Complete every mission in a single day", Icon: "☀️", Type: entity.AchievementPerfectDay},
}

// achievementProgress measures state against a.
func (t *MissionTracker) achievementProgress(state *entity.GameState, a entity.Achievement) entity.AchievementProgress {
	target := a.Requirement
	var current int
	switch a.Type {
	case entity.AchievementStreak:
		current = state.StreakDays
	case entity.AchievementLevel:
		current = state.TotalLevelUps
	case entity.AchievementPoints:
		current = int(math.Floor(state.TotalPoints))
	case entity.AchievementPerfectDay:
		current = state.CompletedMissions()
		if target == 0 {
			target = len(t.catalog.List())
		}
	}
	return entity.AchievementProgress{
		Current:   current,
		Target:    target,
		Completed: target > 0 && current >= target,
	}
}

// unlockAchievements records every newly earned achievement on state and
// returns them in definition order.
func (t *MissionTracker) unlockAchievements(state *entity.GameState, now time.Time) []entity.Achievement {
	var unlocked []entity.Achievement
	for _, a := range t.achievements {
		if _, ok := state.UnlockedAchievements[a.ID]; ok {
			continue
		}
		if !t.achievementProgress(state, a).Completed {
			continue
		}
		if state.UnlockedAchievements == nil {
			state.UnlockedAchievements = make(map[string]time.Time)
		}
		state.UnlockedAchievements[a.ID] = now
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// AchievementStatuses lists every achievement with the state's progress
// towards it.
func (t *MissionTracker) AchievementStatuses(state *entity.GameState) []entity.AchievementStatus {
	out := make([]entity.AchievementStatus, 0, len(t.achievements))
	for _, a := range t.achievements {
		st := entity.AchievementStatus{
			Achievement: a,
			Progress:    t.achievementProgress(state, a),
		}
		if at, ok := state.UnlockedAchievements[a.ID]; ok {
			st.UnlockedAt = &at
			st.Progress.Completed = true
		}
		out = append(out, st)
	}
	return out
}
