package mcp

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/project"
)

var (
	errUnauthenticated = errors.New("no player in request context")
	errNotQueued       = errors.New("project no longer queued")
)

// registerTools adds all player-facing tools to the server.
func registerTools(server *sdkmcp.Server, ts *toolServer) {
	// Scheduling
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "enqueue_project",
		Description: "Pay for and queue a construction or research project. It starts at once when a worker is free.",
	}, ts.enqueueProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "cancel_project",
		Description: "Remove a queued project and refund part of its cost. The refund shrinks as the project progresses.",
	}, ts.cancelProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "quote_cancel",
		Description: "Show what cancel_project would refund right now without cancelling.",
	}, ts.quoteCancel)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pause_project",
		Description: "Toggle a project between active and paused. Resuming may displace the lowest-priority active project.",
	}, ts.pauseProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "decrease_priority",
		Description: "Move a project one place down its track.",
	}, ts.decreasePriority)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "increase_priority",
		Description: "Move a project one place up its track.",
	}, ts.increasePriority)

	// Reading
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_projects",
		Description: "List queued projects per track in priority order with progress.",
	}, ts.getProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_player",
		Description: "Show funds, worker counts and facility levels.",
	}, ts.getPlayer)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_activity",
		Description: "List recent scheduling events, newest first.",
	}, ts.getActivity)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_facilities",
		Description: "Price, duration and unlock requirements of every facility for the current player.",
	}, ts.listFacilities)
}

// status converts a service error into an outcome. Errors without an
// outcome code are returned as tool errors.
func status(err error) (Status, error) {
	if err == nil {
		return Status{Outcome: OutcomeSuccess}, nil
	}
	apiErr := MapError(err)
	if apiErr == nil {
		return Status{}, err
	}
	return Status{Outcome: apiErr.Code, Message: apiErr.Message, RecoveryHint: apiErr.RecoveryHint}, nil
}

func (ts *toolServer) caller(ctx context.Context, mutating bool) (string, error) {
	playerID := getPlayerID(ctx)
	if playerID == "" {
		return "", errUnauthenticated
	}
	if mutating && !ts.limiter.allow(playerID) {
		ts.logger.Warn("rate limited", "player_id", playerID)
		return playerID, errRateLimited
	}
	return playerID, nil
}

// locate returns the current view of a project, including its position.
func (ts *toolServer) locate(ctx context.Context, playerID string, track project.Track, projectID string) (*ProjectView, error) {
	snap, err := ts.scheduler.Snapshot(ctx, playerID, track)
	if err != nil {
		return nil, err
	}
	for _, pv := range trackView(snap).Projects {
		if pv.ID == projectID {
			return &pv, nil
		}
	}
	return nil, fmt.Errorf("%w: project %s", errNotQueued, projectID)
}

func (ts *toolServer) find(ctx context.Context, playerID, projectID string) (*ProjectView, error) {
	for _, track := range project.Tracks {
		pv, err := ts.locate(ctx, playerID, track, projectID)
		if err == nil {
			return pv, nil
		}
		if !errors.Is(err, errNotQueued) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: project %s", errNotQueued, projectID)
}

func (ts *toolServer) enqueueProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in EnqueueProjectParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	var out ProjectResult
	playerID, err := ts.caller(ctx, true)
	if err == nil {
		var rec *project.Project
		rec, err = ts.scheduler.Enqueue(ctx, playerID, in.Facility)
		if err == nil {
			out.Project, err = ts.locate(ctx, playerID, rec.Track, rec.ID)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) cancelProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, RefundResult, error) {
	var out RefundResult
	playerID, err := ts.caller(ctx, true)
	if err == nil {
		refund, cerr := ts.scheduler.Cancel(ctx, playerID, in.ProjectID)
		if err = cerr; err == nil {
			out.Refund = refundView(refund)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) quoteCancel(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, RefundResult, error) {
	var out RefundResult
	playerID, err := ts.caller(ctx, false)
	if err == nil {
		refund, qerr := ts.scheduler.QuoteCancel(ctx, playerID, in.ProjectID)
		if err = qerr; err == nil {
			out.Refund = refundView(refund)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) pauseProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	var out ProjectResult
	playerID, err := ts.caller(ctx, true)
	if err == nil {
		var rec *project.Project
		rec, err = ts.scheduler.PauseResume(ctx, playerID, in.ProjectID)
		if err == nil {
			out.Project, err = ts.locate(ctx, playerID, rec.Track, rec.ID)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) decreasePriority(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	var out ProjectResult
	playerID, err := ts.caller(ctx, true)
	if err == nil {
		err = ts.scheduler.DecreasePriority(ctx, playerID, in.ProjectID)
		if err == nil {
			out.Project, err = ts.find(ctx, playerID, in.ProjectID)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) increasePriority(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, ProjectResult, error) {
	var out ProjectResult
	playerID, err := ts.caller(ctx, true)
	if err == nil {
		err = ts.scheduler.IncreasePriority(ctx, playerID, in.ProjectID)
		if err == nil {
			out.Project, err = ts.find(ctx, playerID, in.ProjectID)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) getProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectsParams) (*sdkmcp.CallToolResult, ProjectsResult, error) {
	var out ProjectsResult
	playerID, err := ts.caller(ctx, false)
	if err == nil {
		tracks := project.Tracks
		if in.Track != "" {
			track := project.Track(in.Track)
			if !track.Valid() {
				err = fmt.Errorf("%w: track %q", errInvalidInput, in.Track)
			}
			tracks = []project.Track{track}
		}
		for _, track := range tracks {
			if err != nil {
				break
			}
			snap, serr := ts.scheduler.Snapshot(ctx, playerID, track)
			if err = serr; err == nil {
				out.Tracks = append(out.Tracks, trackView(snap))
			}
		}
	}
	out.Status, err = status(err)
	if out.Status.Outcome != OutcomeSuccess {
		out.Tracks = nil
	}
	return nil, out, err
}

func (ts *toolServer) getPlayer(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, PlayerResult, error) {
	var out PlayerResult
	playerID, err := ts.caller(ctx, false)
	if err == nil {
		p, perr := ts.scheduler.Player(ctx, playerID)
		if err = perr; err == nil {
			out.Player = playerView(p)
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) getActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetActivityParams) (*sdkmcp.CallToolResult, ActivityResult, error) {
	var out ActivityResult
	playerID, err := ts.caller(ctx, false)
	if err == nil {
		opts := activity.ListActivityOptions{
			SinceTick: in.SinceTick,
			Limit:     in.Limit,
			Offset:    in.Offset,
		}
		if in.ProjectID != "" {
			opts.ProjectID = &in.ProjectID
		}
		if in.Type != "" {
			t := activity.ActivityType(in.Type)
			opts.ActivityType = &t
		}
		var entries []activity.ActivityEntry
		entries, err = ts.activity.GetRecentActivity(ctx, playerID, opts)
		for _, e := range entries {
			out.Entries = append(out.Entries, activityView(e))
		}
	}
	out.Status, err = status(err)
	return nil, out, err
}

func (ts *toolServer) listFacilities(ctx context.Context, _ *sdkmcp.CallToolRequest, _ NoParams) (*sdkmcp.CallToolResult, FacilitiesResult, error) {
	var out FacilitiesResult
	playerID, err := ts.caller(ctx, false)
	if err != nil {
		out.Status, err = status(err)
		return nil, out, err
	}
	p, err := ts.scheduler.Player(ctx, playerID)
	if err != nil {
		out.Status, err = status(err)
		return nil, out, err
	}

	// Prices of leveled facilities depend on levels already queued.
	pending := make(map[string]int)
	for _, track := range project.Tracks {
		snap, err := ts.scheduler.Snapshot(ctx, playerID, track)
		if err != nil {
			out.Status, err = status(err)
			return nil, out, err
		}
		for _, e := range snap.Entries {
			pending[e.Project.Facility]++
		}
	}

	for _, key := range ts.facilities {
		q, err := ts.pricer.Quote(p, key, pending[key])
		if err != nil {
			return nil, out, fmt.Errorf("quoting %s: %w", key, err)
		}
		out.Facilities = append(out.Facilities, facilityView(q))
	}
	out.Status = Status{Outcome: OutcomeSuccess}
	return nil, out, nil
}
