package usecase

import (
	"context"

	"healthcore/internal/domain/entity"
)

type FirebaseAuthClient interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// RemoteSync mirrors local changes to the game backend. Calls never block
// and never report failure synchronously.
type RemoteSync interface {
	RequirementCompleted(userID, missionID, requirementID string, points float64)
	LeveledUp(userID string, level entity.Level, window entity.TimeWindow)
	Reset(userID string)
}

type EventPublisher interface {
	Publish(userID, eventType string, data interface{})
}

type DayArchiver interface {
	Archive(ctx context.Context, state *entity.GameState) error
	ArchivedDates(ctx context.Context, userID string) ([]string, error)
	ArchivedDay(ctx context.Context, userID, date string) (*entity.GameState, error)
}

type GameMetrics interface {
	RequirementCompleted(window string, level int)
	MissionCompleted(window string, level int)
	LeveledUp(window string, level int)
	GameReset()
	DayRolledOver()
	SyncFailed(operation string)
	SessionsActive(n int)
	AchievementUnlocked(id string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) {}

type nopMetrics struct{}

func (nopMetrics) RequirementCompleted(string, int) {}
func (nopMetrics) MissionCompleted(string, int)     {}
func (nopMetrics) LeveledUp(string, int)            {}
func (nopMetrics) GameReset()                       {}
func (nopMetrics) DayRolledOver()                   {}
func (nopMetrics) SyncFailed(string)                {}
func (nopMetrics) SessionsActive(int)               {}
func (nopMetrics) AchievementUnlocked(string)       {}

type nopRemote struct{}

func (nopRemote) RequirementCompleted(string, string, string, float64) {}
func (nopRemote) LeveledUp(string, entity.Level, entity.TimeWindow)    {}
func (nopRemote) Reset(string)                                         {}
