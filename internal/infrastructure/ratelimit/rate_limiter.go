package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions limited separately from the default request budget.
const (
	ActionDefault             = "default"
	ActionCompleteRequirement = "complete_requirement"
	ActionLevelUp             = "level_up"
	ActionReset               = "reset"
)

type Limit struct {
	PerMinute int
	Burst     int
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for different users and actions
type RateLimiter struct {
	limits  map[string]Limit
	entries map[string]*entry
	mutex   sync.Mutex
	now     func() time.Time
}

// NewRateLimiter allows perMinute requests for ActionDefault and derives
// tighter budgets for the mutating game actions.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		limits: map[string]Limit{
			ActionDefault:             {PerMinute: perMinute, Burst: perMinute},
			ActionCompleteRequirement: {PerMinute: 30, Burst: 10},
			ActionLevelUp:             {PerMinute: 12, Burst: 4},
			ActionReset:               {PerMinute: 2, Burst: 1},
		},
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (rl *RateLimiter) SetLimit(action string, l Limit) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.limits[action] = l
}

func (rl *RateLimiter) limitFor(action string) Limit {
	if l, ok := rl.limits[action]; ok {
		return l
	}
	return rl.limits[ActionDefault]
}

// Allow checks if a user action is allowed. When it is not, the returned
// duration is how long until the next token.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	e, ok := rl.entries[key]
	if !ok {
		l := rl.limitFor(action)
		every := rate.Inf
		if l.PerMinute > 0 {
			every = rate.Every(time.Minute / time.Duration(l.PerMinute))
		}
		e = &entry{limiter: rate.NewLimiter(every, l.Burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.mutex.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, e := range rl.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.entries, key)
		}
	}
}

func (rl *RateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.entries)
}

// StartCleanupRoutine prunes idle buckets until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
