package repository

import (
	"context"

	"healthcore/internal/domain/entity"
)

// GameStateRepository stores one current GameState per user. Get returns a
// NOT_FOUND AppError when the user has no state yet.
type GameStateRepository interface {
	Get(ctx context.Context, userID string) (*entity.GameState, error)
	Save(ctx context.Context, state *entity.GameState) error
	Delete(ctx context.Context, userID string) error
}
