package websocket

import "time"

// Event types pushed to clients.
const (
	EventRequirementCompleted = "requirement_completed"
	EventMissionCompleted     = "mission_completed"
	EventLevelUpAvailable     = "level_up_available"
	EventLeveledUp            = "leveled_up"
	EventGameReset            = "game_reset"
	EventDayRolledOver        = "day_rolled_over"
	EventSyncWarning          = "sync_warning"
	EventAchievementUnlocked  = "achievement_unlocked"

	EventPing = "ping"
	EventPong = "pong"
)

type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func NewMessage(eventType string, data interface{}) Message {
	return Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
