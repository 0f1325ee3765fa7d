package entity

import "time"

type AchievementType string

const (
	AchievementStreak     AchievementType = "streak"
	AchievementLevel      AchievementType = "level"
	AchievementPoints     AchievementType = "points"
	AchievementPerfectDay AchievementType = "perfect_day"
)

// Achievement is a lifetime badge. Requirement is compared against the
// measure its Type names: streak days, total level-ups, total points, or
// missions completed in one day. A perfect_day requirement of zero means
// every mission in the catalog.
type Achievement struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Type        AchievementType `json:"type"`
	Requirement int             `json:"requirement"`
}

type AchievementProgress struct {
	Current   int  `json:"current"`
	Target    int  `json:"target"`
	Completed bool `json:"completed"`
}

type AchievementStatus struct {
	Achievement
	Progress   AchievementProgress `json:"progress"`
	UnlockedAt *time.Time          `json:"unlockedAt,omitempty"`
}
