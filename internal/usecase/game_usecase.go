package usecase

import (
	"context"
	"sync"
	"time"

	"healthcore/internal/domain/entity"
	"healthcore/internal/domain/repository"
	"healthcore/internal/domain/service"
	"healthcore/internal/infrastructure/websocket"
	"healthcore/pkg/errors"
	"healthcore/pkg/logger"
)

type GameUseCase interface {
	GetState(ctx context.Context, userID string) (*GameStateView, error)
	CompleteRequirement(ctx context.Context, userID string, req CompleteRequirementRequest) (*service.CompletionResult, error)
	LevelUp(ctx context.Context, userID string, req LevelUpRequest) (*service.LevelUpResult, error)
	ResetGame(ctx context.Context, userID string, req ResetGameRequest) (*GameStateView, error)
	GetLevelProgress(ctx context.Context, userID string, window string) (*service.WindowProgress, error)
	GetAchievements(ctx context.Context, userID string) ([]entity.AchievementStatus, error)
	DeleteGame(ctx context.Context, userID string, req ResetGameRequest) error

	// Archived days
	GetHistory(ctx context.Context, userID string) ([]string, error)
	GetArchivedDay(ctx context.Context, userID, date string) (*entity.GameState, error)

	// SyncFailed is the remote sync failure hook.
	SyncFailed(userID, operation string, err error)

	// Cached sessions
	EvictIdleSessions(maxIdle time.Duration) int
	StartSessionCleanup(ctx context.Context, interval, maxIdle time.Duration)
}

type CompleteRequirementRequest struct {
	MissionID     string   `json:"missionId" validate:"required"`
	RequirementID string   `json:"requirementId" validate:"required"`
	Points        *float64 `json:"points,omitempty" validate:"omitempty,gte=0"`
}

type LevelUpRequest struct {
	Level      int    `json:"level" validate:"required,min=1,max=3"`
	TimeWindow string `json:"timeWindow" validate:"required,oneof=morning midday afternoon evening"`
}

type ResetGameRequest struct {
	Confirm bool `json:"confirm"`
}

type SyncWarning struct {
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

type GameStateView struct {
	*entity.GameState
	CurrentTimeWindow entity.TimeWindow `json:"currentTimeWindow"`
	SyncWarning       *SyncWarning      `json:"syncWarning,omitempty"`
}

// session serialises every mutation of one user's state. refs and
// lastUsed are guarded by gameUseCase.sessionsMu.
type session struct {
	mu    sync.Mutex
	state *entity.GameState

	refs     int
	lastUsed time.Time
}

type gameUseCase struct {
	tracker  *service.MissionTracker
	repo     repository.GameStateRepository
	archiver DayArchiver
	remote   RemoteSync
	events   EventPublisher
	metrics  GameMetrics
	location *time.Location
	logger   logger.Logger

	sessionsMu sync.Mutex
	sessions   map[string]*session

	warningsMu sync.Mutex
	warnings   map[string]*SyncWarning
}

func NewGameUseCase(
	tracker *service.MissionTracker,
	repo repository.GameStateRepository,
	archiver DayArchiver,
	remote RemoteSync,
	events EventPublisher,
	metrics GameMetrics,
	location *time.Location,
	log logger.Logger,
) GameUseCase {
	if remote == nil {
		remote = nopRemote{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &gameUseCase{
		tracker:  tracker,
		repo:     repo,
		archiver: archiver,
		remote:   remote,
		events:   events,
		metrics:  metrics,
		location: location,
		logger:   log,
		sessions: make(map[string]*session),
		warnings: make(map[string]*SyncWarning),
	}
}

func (uc *gameUseCase) today() string {
	return uc.tracker.Now().In(uc.location).Format(entity.DateLayout)
}

// acquire returns the user's session locked. Pair with release.
func (uc *gameUseCase) acquire(userID string) *session {
	uc.sessionsMu.Lock()
	s, ok := uc.sessions[userID]
	if !ok {
		s = &session{}
		uc.sessions[userID] = s
		uc.metrics.SessionsActive(len(uc.sessions))
	}
	s.refs++
	s.lastUsed = uc.tracker.Now()
	uc.sessionsMu.Unlock()

	s.mu.Lock()
	return s
}

func (uc *gameUseCase) release(s *session) {
	s.mu.Unlock()

	uc.sessionsMu.Lock()
	s.refs--
	s.lastUsed = uc.tracker.Now()
	uc.sessionsMu.Unlock()
}

// EvictIdleSessions drops cached states unused for longer than maxIdle.
// Sessions in use are kept; the repository stays the source of truth.
func (uc *gameUseCase) EvictIdleSessions(maxIdle time.Duration) int {
	uc.sessionsMu.Lock()
	defer uc.sessionsMu.Unlock()

	now := uc.tracker.Now()
	evicted := 0
	for userID, s := range uc.sessions {
		if s.refs == 0 && now.Sub(s.lastUsed) > maxIdle {
			delete(uc.sessions, userID)
			evicted++
		}
	}
	if evicted > 0 {
		uc.metrics.SessionsActive(len(uc.sessions))
		uc.logger.Debug("evicted idle sessions", "count", evicted, "remaining", len(uc.sessions))
	}
	return evicted
}

// StartSessionCleanup evicts idle sessions every interval until ctx is done.
func (uc *gameUseCase) StartSessionCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				uc.EvictIdleSessions(maxIdle)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// load makes s.state current: loaded or created, and rolled over to today.
// Callers hold s.mu.
func (uc *gameUseCase) load(ctx context.Context, s *session, userID string) error {
	today := uc.today()

	if s.state == nil {
		state, err := uc.repo.Get(ctx, userID)
		switch {
		case errors.Is(err, errors.CodeNotFound):
			state = uc.tracker.NewGameState(userID, today)
			if err := uc.repo.Save(ctx, state); err != nil {
				return errors.Internal("failed to create game state", err)
			}
			uc.logger.Info("game state created", "user_id", userID, "date", today)
		case err != nil:
			return errors.Internal("failed to load game state", err)
		}
		s.state = state
	}

	if s.state.Date >= today {
		return nil
	}

	finished := s.state.Clone()
	next := s.state.Clone()
	if !uc.tracker.RollOver(next, today) {
		return nil
	}
	if err := uc.repo.Save(ctx, next); err != nil {
		return errors.Internal("failed to roll game state over", err)
	}
	s.state = next

	if uc.archiver != nil {
		if err := uc.archiver.Archive(ctx, finished); err != nil {
			uc.logger.Warn("failed to archive finished day", "user_id", userID, "date", finished.Date, "error", err)
		}
	}

	uc.metrics.DayRolledOver()
	uc.events.Publish(userID, websocket.EventDayRolledOver, map[string]interface{}{
		"previousDate": finished.Date,
		"date":         next.Date,
		"streakDays":   next.StreakDays,
	})
	uc.logger.Info("game state rolled over", "user_id", userID, "from", finished.Date, "to", next.Date)
	return nil
}

// mutate runs fn on a copy of the user's state and keeps the copy only if
// it was persisted.
func (uc *gameUseCase) mutate(ctx context.Context, userID string, fn func(state *entity.GameState) error) (*entity.GameState, error) {
	s := uc.acquire(userID)
	defer uc.release(s)

	if err := uc.load(ctx, s, userID); err != nil {
		return nil, err
	}

	work := s.state.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}

	if err := uc.repo.Save(ctx, work); err != nil {
		uc.logger.Error("failed to save game state", "user_id", userID, "error", err)
		return nil, errors.Internal("failed to save game state", err)
	}

	s.state = work
	return work.Clone(), nil
}

func (uc *gameUseCase) snapshot(ctx context.Context, userID string) (*entity.GameState, error) {
	s := uc.acquire(userID)
	defer uc.release(s)

	if err := uc.load(ctx, s, userID); err != nil {
		return nil, err
	}
	return s.state.Clone(), nil
}

func (uc *gameUseCase) view(state *entity.GameState) *GameStateView {
	now := uc.tracker.Now().In(uc.location)
	return &GameStateView{
		GameState:         state,
		CurrentTimeWindow: entity.CurrentTimeWindow(now.Hour()),
		SyncWarning:       uc.takeWarning(state.UserID),
	}
}

func (uc *gameUseCase) GetState(ctx context.Context, userID string) (*GameStateView, error) {
	state, err := uc.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.view(state), nil
}

func (uc *gameUseCase) CompleteRequirement(ctx context.Context, userID string, req CompleteRequirementRequest) (*service.CompletionResult, error) {
	var points float64
	if req.Points != nil {
		points = *req.Points
	} else {
		p, err := uc.tracker.DefaultPoints(req.MissionID)
		if err != nil {
			return nil, err
		}
		points = p
	}

	var result *service.CompletionResult
	_, err := uc.mutate(ctx, userID, func(state *entity.GameState) error {
		var err error
		result, err = uc.tracker.CompleteRequirement(state, req.MissionID, req.RequirementID, points)
		return err
	})
	if err != nil {
		return nil, err
	}

	window, level := string(result.Bucket.TimeWindow), int(result.Bucket.Level)

	uc.metrics.RequirementCompleted(window, level)
	uc.events.Publish(userID, websocket.EventRequirementCompleted, result)
	if result.MissionCompleted {
		uc.metrics.MissionCompleted(window, level)
		uc.events.Publish(userID, websocket.EventMissionCompleted, map[string]interface{}{
			"missionId":   result.MissionID,
			"completedAt": result.Progress.CompletedAt,
		})
		uc.logger.Info("mission completed", "user_id", userID, "mission_id", result.MissionID)
	}
	if result.LevelUpAvailable {
		uc.events.Publish(userID, websocket.EventLevelUpAvailable, map[string]interface{}{
			"timeWindow": result.Bucket.TimeWindow,
			"level":      result.Bucket.Level,
		})
	}

	uc.publishAchievements(userID, result.Achievements)

	uc.remote.RequirementCompleted(userID, req.MissionID, req.RequirementID, points)
	return result, nil
}

func (uc *gameUseCase) LevelUp(ctx context.Context, userID string, req LevelUpRequest) (*service.LevelUpResult, error) {
	window, err := entity.ParseTimeWindow(req.TimeWindow)
	if err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}
	level := entity.Level(req.Level)

	var result *service.LevelUpResult
	_, err = uc.mutate(ctx, userID, func(state *entity.GameState) error {
		var err error
		result, err = uc.tracker.LevelUp(state, level, window)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.LeveledUp(string(window), int(level))
	uc.events.Publish(userID, websocket.EventLeveledUp, result)
	uc.logger.Info("leveled up", "user_id", userID, "time_window", window, "level", level, "bonus", result.Bonus)
	uc.publishAchievements(userID, result.Achievements)

	uc.remote.LeveledUp(userID, level, window)
	return result, nil
}

func (uc *gameUseCase) ResetGame(ctx context.Context, userID string, req ResetGameRequest) (*GameStateView, error) {
	if !req.Confirm {
		return nil, errors.BadRequest("reset must be confirmed", nil)
	}

	state, err := uc.mutate(ctx, userID, func(state *entity.GameState) error {
		uc.tracker.Reset(state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.GameReset()
	uc.events.Publish(userID, websocket.EventGameReset, map[string]interface{}{
		"date":        state.Date,
		"totalPoints": state.TotalPoints,
	})
	uc.logger.Info("game reset", "user_id", userID, "date", state.Date)

	uc.remote.Reset(userID)
	return uc.view(state), nil
}

func (uc *gameUseCase) GetLevelProgress(ctx context.Context, userID string, window string) (*service.WindowProgress, error) {
	w, err := entity.ParseTimeWindow(window)
	if err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}

	state, err := uc.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.tracker.WindowProgress(state, w)
}

func (uc *gameUseCase) publishAchievements(userID string, unlocked []entity.Achievement) {
	for _, a := range unlocked {
		uc.metrics.AchievementUnlocked(a.ID)
		uc.events.Publish(userID, websocket.EventAchievementUnlocked, a)
		uc.logger.Info("achievement unlocked", "user_id", userID, "achievement_id", a.ID)
	}
}

func (uc *gameUseCase) GetAchievements(ctx context.Context, userID string) ([]entity.AchievementStatus, error) {
	state, err := uc.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.tracker.AchievementStatuses(state), nil
}

// DeleteGame removes the user's stored state. Archived days are kept; the
// next request starts from a fresh state.
func (uc *gameUseCase) DeleteGame(ctx context.Context, userID string, req ResetGameRequest) error {
	if !req.Confirm {
		return errors.BadRequest("delete must be confirmed", nil)
	}

	s := uc.acquire(userID)
	defer uc.release(s)

	if err := uc.repo.Delete(ctx, userID); err != nil {
		uc.logger.Error("failed to delete game state", "user_id", userID, "error", err)
		return errors.Internal("failed to delete game state", err)
	}
	s.state = nil
	uc.takeWarning(userID)

	uc.logger.Info("game state deleted", "user_id", userID)
	return nil
}

func (uc *gameUseCase) GetHistory(ctx context.Context, userID string) ([]string, error) {
	if uc.archiver == nil {
		return []string{}, nil
	}
	dates, err := uc.archiver.ArchivedDates(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list archived days", err)
	}
	return dates, nil
}

func (uc *gameUseCase) GetArchivedDay(ctx context.Context, userID, date string) (*entity.GameState, error) {
	if _, err := time.Parse(entity.DateLayout, date); err != nil {
		return nil, errors.BadRequest("date must be YYYY-MM-DD", err)
	}
	if uc.archiver == nil {
		return nil, errors.NotFound("Archived day", nil)
	}

	state, err := uc.archiver.ArchivedDay(ctx, userID, date)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		return nil, errors.Internal("failed to load archived day", err)
	}
	return state, nil
}

// SyncFailed stores the latest failure for the user's next state read.
// It never touches the game state.
func (uc *gameUseCase) SyncFailed(userID, operation string, err error) {
	w := &SyncWarning{
		Operation: operation,
		Message:   errors.SyncFailure(operation, err).Error(),
		At:        uc.tracker.Now(),
	}

	uc.warningsMu.Lock()
	uc.warnings[userID] = w
	uc.warningsMu.Unlock()

	uc.metrics.SyncFailed(operation)
	uc.events.Publish(userID, websocket.EventSyncWarning, w)
}

func (uc *gameUseCase) takeWarning(userID string) *SyncWarning {
	uc.warningsMu.Lock()
	defer uc.warningsMu.Unlock()

	w := uc.warnings[userID]
	delete(uc.warnings, userID)
	return w
}
