package mcp

import (
	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/scheduler"
)

type EnqueueProjectParams struct {
	Facility string `json:"facility" jsonschema:"facility key, see list_facilities"`
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id" jsonschema:"id of a queued project"`
}

type GetProjectsParams struct {
	Track string `json:"track,omitempty" jsonschema:"construction or research; omit for both"`
}

type GetActivityParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Type      string `json:"type,omitempty" jsonschema:"activity type filter, e.g. completed"`
	SinceTick int64  `json:"since_tick,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type NoParams struct{}

// Status is the outcome part of every tool result.
type Status struct {
	Outcome      string `json:"outcome"`
	Message      string `json:"message,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

type ProjectView struct {
	ID             string  `json:"id"`
	Facility       string  `json:"facility"`
	Family         string  `json:"family"`
	Track          string  `json:"track"`
	State          string  `json:"state"`
	Position       int     `json:"position"`
	StartTick      int64   `json:"start_tick"`
	DurationTicks  int64   `json:"duration_ticks"`
	SuspensionTick *int64  `json:"suspension_tick,omitempty"`
	ElapsedTicks   int64   `json:"elapsed_ticks"`
	RemainingTicks int64   `json:"remaining_ticks"`
	Cost           float64 `json:"cost"`
	Power          float64 `json:"power"`
	Pollution      float64 `json:"pollution"`
}

type TrackView struct {
	Track    string        `json:"track"`
	Tick     int64         `json:"tick"`
	Capacity int           `json:"capacity"`
	Active   int           `json:"active"`
	Projects []ProjectView `json:"projects"`
}

type PlayerView struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Money               float64        `json:"money"`
	ConstructionWorkers int            `json:"construction_workers"`
	LabWorkers          int            `json:"lab_workers"`
	Levels              map[string]int `json:"levels,omitempty"`
	Installed           map[string]int `json:"installed,omitempty"`
}

type RefundView struct {
	ProjectID       string  `json:"project_id"`
	Amount          float64 `json:"amount"`
	Percent         int     `json:"percent"`
	ElapsedFraction float64 `json:"elapsed_fraction"`
}

type ActivityView struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id,omitempty"`
	Facility  string `json:"facility,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Details   string `json:"details,omitempty"`
	Tick      int64  `json:"tick"`
}

type RequirementView struct {
	Facility  string `json:"facility"`
	Level     int    `json:"level"`
	Fulfilled bool   `json:"fulfilled"`
}

type FacilityView struct {
	Facility      string            `json:"facility"`
	Family        string            `json:"family"`
	Track         string            `json:"track"`
	Price         float64           `json:"price"`
	DurationTicks int64             `json:"duration_ticks"`
	Locked        bool              `json:"locked"`
	Requirements  []RequirementView `json:"requirements,omitempty"`
}

type ProjectResult struct {
	Status  Status       `json:"status"`
	Project *ProjectView `json:"project,omitempty"`
}

type RefundResult struct {
	Status Status      `json:"status"`
	Refund *RefundView `json:"refund,omitempty"`
}

type ProjectsResult struct {
	Status Status      `json:"status"`
	Tracks []TrackView `json:"tracks,omitempty"`
}

type PlayerResult struct {
	Status Status      `json:"status"`
	Player *PlayerView `json:"player,omitempty"`
}

type ActivityResult struct {
	Status  Status         `json:"status"`
	Entries []ActivityView `json:"entries,omitempty"`
}

type FacilitiesResult struct {
	Status     Status         `json:"status"`
	Facilities []FacilityView `json:"facilities,omitempty"`
}

func projectView(rec *project.Project, now int64) *ProjectView {
	return &ProjectView{
		ID:             rec.ID,
		Facility:       rec.Facility,
		Family:         string(rec.Family),
		Track:          string(rec.Track),
		State:          string(rec.State()),
		Position:       -1,
		StartTick:      rec.StartTick,
		DurationTicks:  rec.DurationTicks,
		SuspensionTick: rec.SuspensionTick,
		ElapsedTicks:   rec.Elapsed(now),
		RemainingTicks: rec.Remaining(now),
		Cost:           rec.Cost,
		Power:          rec.Power,
		Pollution:      rec.Pollution,
	}
}

func trackView(snap *scheduler.Snapshot) TrackView {
	tv := TrackView{
		Track:    string(snap.Track),
		Tick:     snap.Tick,
		Capacity: snap.Capacity,
		Active:   snap.Active,
		Projects: make([]ProjectView, 0, len(snap.Entries)),
	}
	for _, entry := range snap.Entries {
		pv := projectView(&entry.Project, snap.Tick)
		pv.Position = entry.Position
		tv.Projects = append(tv.Projects, *pv)
	}
	return tv
}

func playerView(p *player.Player) *PlayerView {
	return &PlayerView{
		ID:                  p.ID,
		Name:                p.Name,
		Money:               p.Money,
		ConstructionWorkers: p.ConstructionWorkers,
		LabWorkers:          p.LabWorkers(),
		Levels:              p.Levels,
		Installed:           p.Installed,
	}
}

func refundView(r scheduler.Refund) *RefundView {
	v := RefundView(r)
	return &v
}

func activityView(e activity.ActivityEntry) ActivityView {
	v := ActivityView{
		ID:       e.ID,
		Facility: e.Facility,
		Type:     string(e.ActivityType),
		Summary:  e.Summary,
		Details:  e.Details,
		Tick:     e.Tick,
	}
	if e.ProjectID != nil {
		v.ProjectID = *e.ProjectID
	}
	return v
}

func facilityView(q project.Quote) FacilityView {
	v := FacilityView{
		Facility:      q.Facility,
		Family:        string(q.Family),
		Track:         string(q.Track),
		Price:         q.Price,
		DurationTicks: q.DurationTicks,
		Locked:        q.Locked,
	}
	for _, r := range q.Requirements {
		v.Requirements = append(v.Requirements, RequirementView(r))
	}
	return v
}
