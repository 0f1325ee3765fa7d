package gamesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CompletionData mirrors the backend's completion_data object.
type CompletionData struct {
	RequirementID string  `json:"requirementId"`
	PointsEarned  float64 `json:"pointsEarned"`
}

type missionCompleteRequest struct {
	UserID         string         `json:"user_id"`
	MissionID      string         `json:"mission_id"`
	CompletionData CompletionData `json:"completion_data"`
}

type levelUpRequest struct {
	UserID     string `json:"user_id"`
	Level      int    `json:"level"`
	TimeWindow string `json:"time_window"`
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether another attempt could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}

// BackendClient talks to the game backend REST API.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *BackendClient) MissionComplete(ctx context.Context, userID, missionID string, data CompletionData) error {
	return c.post(ctx, "/api/game/mission-complete", missionCompleteRequest{
		UserID:         userID,
		MissionID:      missionID,
		CompletionData: data,
	})
}

func (c *BackendClient) LevelUp(ctx context.Context, userID string, level int, timeWindow string) error {
	return c.post(ctx, "/api/game/level-up", levelUpRequest{
		UserID:     userID,
		Level:      level,
		TimeWindow: timeWindow,
	})
}

func (c *BackendClient) Reset(ctx context.Context, userID string) error {
	return c.post(ctx, "/api/game/reset/"+url.PathEscape(userID), nil)
}

func (c *BackendClient) post(ctx context.Context, path string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
