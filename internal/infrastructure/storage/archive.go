package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"healthcore/internal/domain/entity"
	"healthcore/pkg/errors"
)

const archivePrefix = "game-states"

// ObjectName is where a finished day of a user is archived. The user id is
// escaped into a single segment so it can never reach another user's prefix.
func ObjectName(userID, date string) string {
	return userPrefix(userID) + url.PathEscape(date) + ".json"
}

func userPrefix(userID string) string {
	return archivePrefix + "/" + url.PathEscape(userID) + "/"
}

func dateFromObject(name string) string {
	return strings.TrimSuffix(path.Base(name), ".json")
}

func encodeState(state *entity.GameState) ([]byte, error) {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return b, nil
}

func decodeState(data []byte) (*entity.GameState, error) {
	var state entity.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode archived game state: %w", err)
	}
	return &state, nil
}

// MemoryArchiver keeps archived days in process memory.
type MemoryArchiver struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryArchiver() *MemoryArchiver {
	return &MemoryArchiver{objects: make(map[string][]byte)}
}

func (a *MemoryArchiver) Archive(ctx context.Context, state *entity.GameState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[ObjectName(state.UserID, state.Date)] = data
	return nil
}

func (a *MemoryArchiver) ArchivedDates(ctx context.Context, userID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	prefix := userPrefix(userID)
	dates := []string{}
	for name := range a.objects {
		if strings.HasPrefix(name, prefix) {
			dates = append(dates, dateFromObject(name))
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (a *MemoryArchiver) ArchivedDay(ctx context.Context, userID, date string) (*entity.GameState, error) {
	a.mu.RLock()
	data, ok := a.objects[ObjectName(userID, date)]
	a.mu.RUnlock()

	if !ok {
		return nil, errors.NotFound("Archived day", nil)
	}
	return decodeState(data)
}
