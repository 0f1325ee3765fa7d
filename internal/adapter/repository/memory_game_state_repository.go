package repository

import (
	"context"
	"sync"

	"healthcore/internal/domain/entity"
	"healthcore/internal/domain/repository"
	"healthcore/pkg/errors"
)

type memoryGameStateRepository struct {
	mu     sync.RWMutex
	states map[string]*entity.GameState
}

// NewMemoryGameStateRepository keeps states in process memory. Values are
// copied in and out so callers never share a state with the store.
func NewMemoryGameStateRepository() repository.GameStateRepository {
	return &memoryGameStateRepository{
		states: make(map[string]*entity.GameState),
	}
}

func (r *memoryGameStateRepository) Get(ctx context.Context, userID string) (*entity.GameState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, errors.NotFound("Game state", nil)
	}
	return state.Clone(), nil
}

func (r *memoryGameStateRepository) Save(ctx context.Context, state *entity.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.UserID] = state.Clone()
	return nil
}

func (r *memoryGameStateRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, userID)
	return nil
}
