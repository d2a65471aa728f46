package effects

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/scheduler"
)

// ActivityLogger persists activity entries.
type ActivityLogger interface {
	LogActivity(ctx context.Context, playerID string, entry *activity.ActivityEntry) error
}

// ActivityNotifier writes scheduler events to the player's activity log.
type ActivityNotifier struct {
	sink   ActivityLogger
	logger *slog.Logger
}

// NewActivityNotifier creates a notifier writing to sink.
func NewActivityNotifier(sink ActivityLogger, logger *slog.Logger) *ActivityNotifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ActivityNotifier{sink: sink, logger: logger}
}

type eventDetails struct {
	Track  string `json:"track,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Notify logs each event in order. The schedule change is already committed,
// so write failures are only logged.
func (n *ActivityNotifier) Notify(ctx context.Context, events []scheduler.Event) {
	for _, ev := range events {
		entry := &activity.ActivityEntry{
			PlayerID:     ev.PlayerID,
			Facility:     ev.Facility,
			ActivityType: activity.ActivityType(ev.Type),
			Summary:      summary(ev),
			Tick:         ev.Tick,
		}
		if ev.ProjectID != "" {
			id := ev.ProjectID
			entry.ProjectID = &id
		}
		if ev.Track != "" || ev.Detail != "" {
			details, err := json.Marshal(eventDetails{Track: string(ev.Track), Detail: ev.Detail})
			if err == nil {
				entry.Details = string(details)
			}
		}
		if err := n.sink.LogActivity(ctx, ev.PlayerID, entry); err != nil {
			n.logger.Error("failed to log activity", "player_id", ev.PlayerID, "type", ev.Type, "error", err)
		}
	}
}

func summary(ev scheduler.Event) string {
	switch ev.Type {
	case scheduler.EventEnqueued:
		return fmt.Sprintf("%s queued (%s)", ev.Facility, ev.Detail)
	case scheduler.EventCancelled:
		return fmt.Sprintf("%s cancelled, %s", ev.Facility, ev.Detail)
	case scheduler.EventPaused:
		return ev.Facility + " paused"
	case scheduler.EventResumed:
		return ev.Facility + " resumed"
	case scheduler.EventPromoted:
		return ev.Facility + " started"
	case scheduler.EventDemoted:
		return ev.Facility + " put on hold"
	case scheduler.EventReordered:
		return fmt.Sprintf("%s moved to %s", ev.Facility, ev.Detail)
	case scheduler.EventCompleted:
		return ev.Facility + " finished"
	case scheduler.EventInconsistency:
		return "schedule repaired: " + ev.Detail
	}
	return string(ev.Type)
}
