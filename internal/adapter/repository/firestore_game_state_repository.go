package repository

import (
	"context"
	"fmt"

	"healthcore/internal/domain/entity"
	"healthcore/internal/domain/repository"
	"healthcore/pkg/errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const gameStatesCollection = "game_states"

type firestoreGameStateRepository struct {
	client *firestore.Client
}

func NewFirestoreGameStateRepository(client *firestore.Client) repository.GameStateRepository {
	return &firestoreGameStateRepository{
		client: client,
	}
}

func (r *firestoreGameStateRepository) Get(ctx context.Context, userID string) (*entity.GameState, error) {
	doc, err := r.client.Collection(gameStatesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Game state", err)
		}
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	var state entity.GameState
	if err := doc.DataTo(&state); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}

	return &state, nil
}

func (r *firestoreGameStateRepository) Save(ctx context.Context, state *entity.GameState) error {
	// Whole-document writes: dropped progress entries must not survive a merge.
	_, err := r.client.Collection(gameStatesCollection).Doc(state.UserID).Set(ctx, state)
	if err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}

	return nil
}

func (r *firestoreGameStateRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.client.Collection(gameStatesCollection).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}

	return nil
}
