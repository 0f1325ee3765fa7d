package entity

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

type MissionProgress struct {
	MissionID             string          `firestore:"missionId" json:"missionId"`
	CompletedRequirements map[string]bool `firestore:"completedRequirements" json:"completedRequirements"`
	TotalRequirements     int             `firestore:"totalRequirements" json:"totalRequirements"`
	CompletionPercentage  int             `firestore:"completionPercentage" json:"completionPercentage"`
	Completed             bool            `firestore:"completed" json:"completed"`
	CompletedAt           *time.Time      `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
	PointsEarned          float64         `firestore:"pointsEarned" json:"pointsEarned"`
}

func NewMissionProgress(missionID string, totalRequirements int) *MissionProgress {
	return &MissionProgress{
		MissionID:             missionID,
		CompletedRequirements: make(map[string]bool),
		TotalRequirements:     totalRequirements,
	}
}

func (p *MissionProgress) CompletedCount() int {
	return len(p.CompletedRequirements)
}

// Ratio is the exact completed/total fraction.
func (p *MissionProgress) Ratio() float64 {
	if p.TotalRequirements == 0 {
		return 0
	}
	return float64(p.CompletedCount()) / float64(p.TotalRequirements)
}

func (p *MissionProgress) recompute() {
	p.CompletionPercentage = int(math.Round(p.Ratio() * 100))
}

// MarkRequirement records a requirement; it reports false when the
// requirement was already complete.
func (p *MissionProgress) MarkRequirement(requirementID string) bool {
	if p.CompletedRequirements == nil {
		p.CompletedRequirements = make(map[string]bool)
	}
	if p.CompletedRequirements[requirementID] {
		return false
	}
	p.CompletedRequirements[requirementID] = true
	p.recompute()
	return true
}

func (p *MissionProgress) AllRequirementsDone() bool {
	return p.TotalRequirements > 0 && p.CompletedCount() >= p.TotalRequirements
}

type BucketStatus string

const (
	BucketInProgress     BucketStatus = "in_progress"
	BucketReadyToLevelUp BucketStatus = "ready_to_level_up"
	BucketLeveledUp      BucketStatus = "leveled_up"
)

type LevelBucket struct {
	TimeWindow  TimeWindow `firestore:"timeWindow" json:"timeWindow"`
	Level       Level      `firestore:"level" json:"level"`
	Total       int        `firestore:"total" json:"total"`
	Completed   int        `firestore:"completed" json:"completed"`
	CanLevelUp  bool       `firestore:"canLevelUp" json:"canLevelUp"`
	LeveledUpAt *time.Time `firestore:"leveledUpAt,omitempty" json:"leveledUpAt,omitempty"`
}

func BucketKey(window TimeWindow, level Level) string {
	return string(window) + "_" + level.Key()
}

func (b *LevelBucket) Key() string {
	return BucketKey(b.TimeWindow, b.Level)
}

func (b *LevelBucket) LeveledUp() bool {
	return b.LeveledUpAt != nil
}

func (b *LevelBucket) Status() BucketStatus {
	switch {
	case b.LeveledUp():
		return BucketLeveledUp
	case b.CanLevelUp:
		return BucketReadyToLevelUp
	default:
		return BucketInProgress
	}
}

// RecordMissionCompleted bumps the completed count and re-evaluates
// CanLevelUp. It reports whether the bucket just became ready.
func (b *LevelBucket) RecordMissionCompleted() bool {
	if b.Completed < b.Total {
		b.Completed++
	}
	return b.evaluate()
}

func (b *LevelBucket) evaluate() bool {
	if b.CanLevelUp || b.LeveledUp() {
		return false
	}
	if b.Total > 0 && b.Completed == b.Total {
		b.CanLevelUp = true
		return true
	}
	return false
}

type GameState struct {
	ID             string                      `firestore:"id" json:"id"`
	UserID         string                      `firestore:"userId" json:"userId"`
	Date           string                      `firestore:"date" json:"date"`
	Levels         map[string]*LevelBucket     `firestore:"levels" json:"levels"`
	Progress       map[string]*MissionProgress `firestore:"progress" json:"progress"`
	DailyPoints    float64                     `firestore:"dailyPoints" json:"dailyPoints"`
	TotalPoints    float64                     `firestore:"totalPoints" json:"totalPoints"`
	TotalLevelUps  int                         `firestore:"totalLevelUps" json:"totalLevelUps"`
	StreakDays     int                         `firestore:"streakDays" json:"streakDays"`
	LastActiveDate string                      `firestore:"lastActiveDate" json:"lastActiveDate"`
	CreatedAt      time.Time                   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time                   `firestore:"updatedAt" json:"updatedAt"`

	// UnlockedAchievements maps achievement id to unlock time. It survives
	// resets and rollovers.
	UnlockedAchievements map[string]time.Time `firestore:"unlockedAchievements" json:"unlockedAchievements"`
}

func (s *GameState) Bucket(window TimeWindow, level Level) *LevelBucket {
	if s.Levels == nil {
		return nil
	}
	return s.Levels[BucketKey(window, level)]
}

func (s *GameState) MissionProgress(missionID string) *MissionProgress {
	if s.Progress == nil {
		return nil
	}
	return s.Progress[missionID]
}

// CompletedMissions counts missions completed today.
func (s *GameState) CompletedMissions() int {
	n := 0
	for _, p := range s.Progress {
		if p.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can hand snapshots to other
// goroutines.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Levels = make(map[string]*LevelBucket, len(s.Levels))
	for k, b := range s.Levels {
		bc := *b
		if b.LeveledUpAt != nil {
			t := *b.LeveledUpAt
			bc.LeveledUpAt = &t
		}
		out.Levels[k] = &bc
	}
	out.Progress = make(map[string]*MissionProgress, len(s.Progress))
	for k, p := range s.Progress {
		pc := *p
		pc.CompletedRequirements = make(map[string]bool, len(p.CompletedRequirements))
		for r, done := range p.CompletedRequirements {
			pc.CompletedRequirements[r] = done
		}
		if p.CompletedAt != nil {
			t := *p.CompletedAt
			pc.CompletedAt = &t
		}
		out.Progress[k] = &pc
	}
	if s.UnlockedAchievements != nil {
		out.UnlockedAchievements = make(map[string]time.Time, len(s.UnlockedAchievements))
		for id, at := range s.UnlockedAchievements {
			out.UnlockedAchievements[id] = at
		}
	}
	return &out
}
