package gamesync

import (
	"context"
	"errors"
	"sync"
	"time"

	"healthcore/internal/domain/entity"
	"healthcore/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	OpMissionComplete = "mission_complete"
	OpLevelUp         = "level_up"
	OpReset           = "reset"
)

var (
	ErrQueueFull = errors.New("sync queue is full")
	ErrStopped   = errors.New("syncer stopped")
)

// Backend is the remote side of a sync job.
type Backend interface {
	MissionComplete(ctx context.Context, userID, missionID string, data CompletionData) error
	LevelUp(ctx context.Context, userID string, level int, timeWindow string) error
	Reset(ctx context.Context, userID string) error
}

// FailureFunc is told about every job that was given up on.
type FailureFunc func(userID, operation string, err error)

type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Timeout        time.Duration
	QueueSize      int
}

type job struct {
	id        string
	userID    string
	operation string
	run       func(ctx context.Context) error
}

// Syncer runs jobs on a single worker so one user's operations reach the
// backend in order.
type Syncer struct {
	backend   Backend
	cfg       Config
	logger    logger.Logger
	onFailure FailureFunc

	queue  chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewSyncer(backend Backend, cfg Config, log logger.Logger) *Syncer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{
		backend:   backend,
		cfg:       cfg,
		logger:    log,
		onFailure: func(string, string, error) {},
		queue:     make(chan job, cfg.QueueSize),
		cancel:    func() {},
	}
}

// OnFailure must be set before Start.
func (s *Syncer) OnFailure(fn FailureFunc) {
	if fn != nil {
		s.onFailure = fn
	}
}

// Start runs the worker. ctx bounds in-flight retries; pass a context that
// outlives the server and let Shutdown end the worker.
func (s *Syncer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for j := range s.queue {
			s.process(ctx, j)
		}
	}()
}

// Shutdown stops accepting jobs and drains the queue. When ctx expires first
// the remaining retries are cancelled and reported as failures.
func (s *Syncer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-drained
		return ctx.Err()
	}
}

// Stop drains queued jobs and waits for the worker.
func (s *Syncer) Stop() {
	_ = s.Shutdown(context.Background())
}

func (s *Syncer) RequirementCompleted(userID, missionID, requirementID string, points float64) {
	s.enqueue(userID, OpMissionComplete, func(ctx context.Context) error {
		return s.backend.MissionComplete(ctx, userID, missionID, CompletionData{
			RequirementID: requirementID,
			PointsEarned:  points,
		})
	})
}

func (s *Syncer) LeveledUp(userID string, level entity.Level, window entity.TimeWindow) {
	s.enqueue(userID, OpLevelUp, func(ctx context.Context) error {
		return s.backend.LevelUp(ctx, userID, int(level), string(window))
	})
}

func (s *Syncer) Reset(userID string) {
	s.enqueue(userID, OpReset, func(ctx context.Context) error {
		return s.backend.Reset(ctx, userID)
	})
}

func (s *Syncer) enqueue(userID, operation string, run func(ctx context.Context) error) {
	j := job{id: uuid.NewString(), userID: userID, operation: operation, run: run}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.fail(j, ErrStopped)
		return
	}

	select {
	case s.queue <- j:
	default:
		s.fail(j, ErrQueueFull)
	}
}

func (s *Syncer) process(ctx context.Context, j job) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		attemptCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}

		err := j.run(attemptCtx)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		s.logger.Debug("sync attempt failed",
			"job_id", j.id, "operation", j.operation, "attempt", attempt, "retry_in", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		s.fail(j, err)
		return
	}

	s.logger.Debug("sync job done", "job_id", j.id, "operation", j.operation, "attempts", attempt)
}

func (s *Syncer) fail(j job, err error) {
	s.logger.Warn("sync job failed, local state kept",
		"job_id", j.id, "user_id", j.userID, "operation", j.operation, "error", err)
	s.onFailure(j.userID, j.operation, err)
}

// Nop is used when no backend is configured.
type Nop struct{}

func (Nop) RequirementCompleted(string, string, string, float64) {}
func (Nop) LeveledUp(string, entity.Level, entity.TimeWindow)    {}
func (Nop) Reset(string)                                         {}
