package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeEnqueued      ActivityType = "enqueued"
	TypeCancelled     ActivityType = "cancelled"
	TypePaused        ActivityType = "paused"
	TypeResumed       ActivityType = "resumed"
	TypePromoted      ActivityType = "promoted"
	TypeDemoted       ActivityType = "demoted"
	TypeReordered     ActivityType = "reordered"
	TypeCompleted     ActivityType = "completed"
	TypeInconsistency ActivityType = "inconsistency"
)

// ActivityEntry represents an event in a player's activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	PlayerID     string       `json:"player_id"`
	ProjectID    *string      `json:"project_id,omitempty"`
	Facility     string       `json:"facility,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
	Tick         int64        `json:"tick"`
}
