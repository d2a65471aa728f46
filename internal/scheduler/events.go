package scheduler

import "github.com/rpggio/foreman/internal/domain/project"

// EventType names a player-visible scheduling transition.
type EventType string

const (
	EventEnqueued      EventType = "enqueued"
	EventCancelled     EventType = "cancelled"
	EventPaused        EventType = "paused"
	EventResumed       EventType = "resumed"
	EventPromoted      EventType = "promoted"
	EventDemoted       EventType = "demoted"
	EventReordered     EventType = "reordered"
	EventCompleted     EventType = "completed"
	EventInconsistency EventType = "inconsistency"
)

// Event describes one committed transition.
type Event struct {
	Type      EventType     `json:"type"`
	PlayerID  string        `json:"player_id"`
	ProjectID string        `json:"project_id,omitempty"`
	Facility  string        `json:"facility,omitempty"`
	Track     project.Track `json:"track,omitempty"`
	Tick      int64         `json:"tick"`
	Detail    string        `json:"detail,omitempty"`
}
