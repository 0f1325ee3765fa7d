package service

import (
	"math"
	"time"

	"healthcore/internal/domain/catalog"
	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"

	"github.com/google/uuid"
)

// MissionTracker applies game events to a GameState. It performs no I/O
// and is not safe for concurrent use on the same state.
type MissionTracker struct {
	catalog      *catalog.Catalog
	achievements []entity.Achievement
	now          func() time.Time
}

func NewMissionTracker(c *catalog.Catalog, now func() time.Time) *MissionTracker {
	if now == nil {
		now = time.Now
	}
	return &MissionTracker{catalog: c, achievements: DefaultAchievements, now: now}
}

func (t *MissionTracker) Catalog() *catalog.Catalog {
	return t.catalog
}

func (t *MissionTracker) Now() time.Time {
	return t.now()
}

type CompletionResult struct {
	MissionID        string                 `json:"missionId"`
	RequirementID    string                 `json:"requirementId"`
	Progress         entity.MissionProgress `json:"progress"`
	Bucket           entity.LevelBucket     `json:"bucket"`
	PointsEarned     float64                `json:"pointsEarned"`
	MissionCompleted bool                   `json:"missionCompleted"`
	LevelUpAvailable bool                   `json:"levelUpAvailable"`
	DailyPoints      float64                `json:"dailyPoints"`
	TotalPoints      float64                `json:"totalPoints"`
	Achievements     []entity.Achievement   `json:"achievements,omitempty"`
}

type LevelUpResult struct {
	TimeWindow    entity.TimeWindow `json:"timeWindow"`
	Level         entity.Level      `json:"level"`
	Bonus         float64           `json:"bonus"`
	LeveledUpAt   time.Time         `json:"leveledUpAt"`
	TotalLevelUps int               `json:"totalLevelUps"`
	DailyPoints   float64           `json:"dailyPoints"`
	TotalPoints   float64           `json:"totalPoints"`

	Achievements []entity.Achievement `json:"achievements,omitempty"`
}

// NewGameState creates a fresh state for userID on date.
func (t *MissionTracker) NewGameState(userID, date string) *entity.GameState {
	now := t.now()
	state := &entity.GameState{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.resetDaily(state)
	return state
}

// DefaultPoints is the even per-requirement share of a mission's base points.
func (t *MissionTracker) DefaultPoints(missionID string) (float64, error) {
	m, ok := t.catalog.Mission(missionID)
	if !ok {
		return 0, errors.UnknownMission(missionID)
	}
	return m.PointsPerRequirement(), nil
}

func (t *MissionTracker) CompleteRequirement(state *entity.GameState, missionID, requirementID string, points float64) (*CompletionResult, error) {
	mission, ok := t.catalog.Mission(missionID)
	if !ok {
		return nil, errors.UnknownMission(missionID)
	}
	if !mission.HasRequirement(requirementID) {
		return nil, errors.UnknownRequirement(missionID, requirementID)
	}
	if points < 0 || math.IsNaN(points) || math.IsInf(points, 0) {
		return nil, errors.BadRequest("points must be a non-negative number", nil)
	}

	t.ensureBuckets(state)

	progress := state.Progress[missionID]
	if progress != nil && progress.CompletedRequirements[requirementID] {
		return nil, errors.DuplicateCompletion(requirementID)
	}
	if progress == nil {
		progress = entity.NewMissionProgress(missionID, len(mission.Requirements))
		state.Progress[missionID] = progress
	}

	now := t.now()
	progress.MarkRequirement(requirementID)
	progress.PointsEarned += points

	bucket := state.Levels[entity.BucketKey(mission.TimeWindow, mission.Level)]
	result := &CompletionResult{
		MissionID:     missionID,
		RequirementID: requirementID,
		PointsEarned:  points,
	}

	if progress.AllRequirementsDone() && !progress.Completed {
		progress.Completed = true
		progress.CompletedAt = &now
		result.MissionCompleted = true
		result.LevelUpAvailable = bucket.RecordMissionCompleted()
		t.markActive(state)
	}

	state.DailyPoints += points
	state.TotalPoints += points
	state.UpdatedAt = now

	result.Progress = *progress
	result.Bucket = *bucket
	result.DailyPoints = state.DailyPoints
	result.TotalPoints = state.TotalPoints
	result.Achievements = t.unlockAchievements(state, now)
	return result, nil
}

func (t *MissionTracker) LevelUp(state *entity.GameState, level entity.Level, window entity.TimeWindow) (*LevelUpResult, error) {
	if !level.Valid() {
		return nil, errors.BadRequest("invalid level", nil)
	}
	if !window.Valid() {
		return nil, errors.BadRequest("invalid time window", nil)
	}

	t.ensureBuckets(state)

	bucket := state.Levels[entity.BucketKey(window, level)]
	if bucket.LeveledUp() {
		return nil, errors.PreconditionFailed("level already completed for this time window")
	}
	if !bucket.CanLevelUp {
		return nil, errors.PreconditionFailed("not every mission in this level is complete")
	}

	now := t.now()
	bonus := level.LevelUpBonus()

	bucket.LeveledUpAt = &now
	bucket.CanLevelUp = false
	state.DailyPoints += bonus
	state.TotalPoints += bonus
	state.TotalLevelUps++
	state.UpdatedAt = now

	return &LevelUpResult{
		TimeWindow:    window,
		Level:         level,
		Bonus:         bonus,
		LeveledUpAt:   now,
		TotalLevelUps: state.TotalLevelUps,
		DailyPoints:   state.DailyPoints,
		TotalPoints:   state.TotalPoints,
		Achievements:  t.unlockAchievements(state, now),
	}, nil
}

// Reset discards the day's progress. Lifetime points, level-ups,
// achievements and the streak survive.
func (t *MissionTracker) Reset(state *entity.GameState) {
	t.resetDaily(state)
	state.UpdatedAt = t.now()
}

// RollOver moves state to date. It reports false when state already
// belongs to date or to a later day.
func (t *MissionTracker) RollOver(state *entity.GameState, date string) bool {
	next, err := time.Parse(entity.DateLayout, date)
	if err != nil {
		return false
	}
	current, err := time.Parse(entity.DateLayout, state.Date)
	if err == nil && !next.After(current) {
		return false
	}

	// A skipped day breaks the streak.
	if state.LastActiveDate != "" {
		last, err := time.Parse(entity.DateLayout, state.LastActiveDate)
		if err != nil || next.Sub(last) > 24*time.Hour {
			state.StreakDays = 0
		}
	}

	state.Date = date
	t.resetDaily(state)
	state.UpdatedAt = t.now()
	return true
}

func (t *MissionTracker) BucketFor(state *entity.GameState, window entity.TimeWindow, level entity.Level) *entity.LevelBucket {
	t.ensureBuckets(state)
	return state.Bucket(window, level)
}

// IsLevelUnlocked reports whether a level's missions are selectable: level
// 1 always is, level N once level N-1 of the same window has leveled up.
func (t *MissionTracker) IsLevelUnlocked(state *entity.GameState, window entity.TimeWindow, level entity.Level) bool {
	if !level.Valid() || !window.Valid() {
		return false
	}
	if level == entity.Level1 {
		return true
	}
	prev := state.Bucket(window, level-1)
	return prev != nil && prev.LeveledUp()
}

type LevelProgress struct {
	Level       entity.Level        `json:"level"`
	Name        string              `json:"name"`
	Total       int                 `json:"total"`
	Completed   int                 `json:"completed"`
	CanLevelUp  bool                `json:"canLevelUp"`
	LeveledUpAt *time.Time          `json:"leveledUpAt,omitempty"`
	Status      entity.BucketStatus `json:"status"`
	Unlocked    bool                `json:"unlocked"`
}

type WindowProgress struct {
	TimeWindow entity.TimeWindow `json:"timeWindow"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Fraction   float64           `json:"fraction"`
	Levels     []LevelProgress   `json:"levels"`
}

func (t *MissionTracker) WindowProgress(state *entity.GameState, window entity.TimeWindow) (*WindowProgress, error) {
	if !window.Valid() {
		return nil, errors.BadRequest("invalid time window", nil)
	}
	t.ensureBuckets(state)

	wp := &WindowProgress{TimeWindow: window}
	for _, l := range entity.Levels {
		b := state.Bucket(window, l)
		wp.Total += b.Total
		wp.Completed += b.Completed
		wp.Levels = append(wp.Levels, LevelProgress{
			Level:       l,
			Name:        l.Name(),
			Total:       b.Total,
			Completed:   b.Completed,
			CanLevelUp:  b.CanLevelUp,
			LeveledUpAt: b.LeveledUpAt,
			Status:      b.Status(),
			Unlocked:    t.IsLevelUnlocked(state, window, l),
		})
	}
	if wp.Total > 0 {
		wp.Fraction = float64(wp.Completed) / float64(wp.Total)
	}
	return wp, nil
}

// markActive keeps the streak on the first completed mission of a day.
func (t *MissionTracker) markActive(state *entity.GameState) {
	if state.LastActiveDate == state.Date {
		return
	}
	today, err := time.Parse(entity.DateLayout, state.Date)
	if err == nil && state.LastActiveDate == today.AddDate(0, 0, -1).Format(entity.DateLayout) {
		state.StreakDays++
	} else {
		state.StreakDays = 1
	}
	state.LastActiveDate = state.Date
}

func (t *MissionTracker) resetDaily(state *entity.GameState) {
	state.Progress = make(map[string]*entity.MissionProgress)
	state.Levels = make(map[string]*entity.LevelBucket)
	state.DailyPoints = 0
	t.ensureBuckets(state)
}

// ensureBuckets fills in any bucket missing from a state, e.g. one
// decoded from storage.
func (t *MissionTracker) ensureBuckets(state *entity.GameState) {
	if state.Levels == nil {
		state.Levels = make(map[string]*entity.LevelBucket)
	}
	if state.Progress == nil {
		state.Progress = make(map[string]*entity.MissionProgress)
	}
	totals := t.catalog.BucketTotals()
	for _, w := range entity.TimeWindows {
		for _, l := range entity.Levels {
			key := entity.BucketKey(w, l)
			if _, ok := state.Levels[key]; !ok {
				state.Levels[key] = &entity.LevelBucket{
					TimeWindow: w,
					Level:      l,
					Total:      totals[key],
				}
			}
		}
	}
}
