package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `foreman runs the construction and research queues of one player in a tick-based economy game.

Core concepts:
- Track: construction or research. Each track has its own priority list and worker pool.
- Workers: construction workers are a player attribute; research workers come from the laboratory (one per three levels, starting at level 1).
- Project: one paid unit of work. Active projects progress each tick; suspended ones are frozen.
- The active projects always sit at the top of their track. When a project finishes, the highest suspended project that may run takes its worker.
- Leveled facilities (functional buildings, technologies): only one level of the same facility progresses at a time, lowest remaining duration first.

Default workflow:
1) Orient: get_player and get_projects.
2) Pick something: list_facilities shows price, duration and unmet requirements.
3) Queue: enqueue_project. It starts at once when a worker is free, otherwise it waits at the bottom.
4) Steer: increase_priority / decrease_priority / pause_project.
5) Back out: quote_cancel then cancel_project. Refunds shrink with progress.
6) Follow up: get_activity lists completions and other events, newest first.

Every tool result carries status.outcome: success, insufficient_funds, locked, parallelization_denied, not_found, no_workers, unknown_facility, internal_inconsistency, rate_limited or invalid_input. Rejected operations change nothing.

Docs:
- foreman://docs/index
- foreman://docs/scheduling
- foreman://docs/outcomes
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "foreman://docs/index",
		Name:        "docs_index",
		Title:       "foreman docs index",
		Description: "Entry point: which tools exist and what to read next.",
		Content: `# foreman docs

## Tools

| Tool | Changes state |
|------|---------------|
| ` + "`enqueue_project`" + ` | yes |
| ` + "`cancel_project`" + ` | yes |
| ` + "`pause_project`" + ` | yes |
| ` + "`increase_priority`" + ` / ` + "`decrease_priority`" + ` | yes |
| ` + "`quote_cancel`" + ` | no |
| ` + "`get_projects`" + ` / ` + "`get_player`" + ` / ` + "`get_activity`" + ` / ` + "`list_facilities`" + ` | no |

Mutating tools are rate limited per player.

## Read on demand

- ` + "`foreman://docs/scheduling`" + `: how workers, priorities and levels interact.
- ` + "`foreman://docs/outcomes`" + `: what each outcome means and how to recover.
`,
	},
	{
		URI:         "foreman://docs/scheduling",
		Name:        "docs_scheduling",
		Title:       "Scheduling rules",
		Description: "Worker slots, priority order, pausing, leveled facilities and refunds.",
		Content: `# Scheduling rules

## Ticks

The game clock advances one tick at a time. An active project with duration D started at tick S completes at the first tick >= S + D.

## Priority lists

Each track is an ordered list. The first N entries are active, where N is at most the track's worker count; the rest are suspended.
A new project goes to the top when a worker is free, otherwise to the bottom.

## Pause and resume

Pausing freezes progress and hands the worker to the next eligible project.
Resuming keeps the elapsed ticks. When all workers are busy, the lowest active project is suspended to make room.
Research can't be resumed without a laboratory.

## Leveled facilities

Levels of the same functional facility or technology never progress together. The queued level with the least remaining work goes first.
Moving a level past another level of the same facility is refused with ` + "`parallelization_denied`" + `.

## Refunds

Cancelling returns 80% of the paid cost, scaled down by the elapsed fraction. A half-finished project refunds 40%.
Paused projects use the fraction frozen at pause time.
`,
	},
	{
		URI:         "foreman://docs/outcomes",
		Name:        "docs_outcomes",
		Title:       "Outcomes and recovery",
		Description: "Meaning of each status.outcome value.",
		Content: `# Outcomes

- ` + "`success`" + `: the operation was applied.
- ` + "`insufficient_funds`" + `: the price is above your money. Nothing was charged.
- ` + "`locked`" + `: requirements are not met. See ` + "`list_facilities`" + `.
- ` + "`parallelization_denied`" + `: another level of the facility has to progress first.
- ` + "`not_found`" + `: the project is not yours or no longer queued.
- ` + "`no_workers`" + `: the track has no workers at all.
- ` + "`unknown_facility`" + `: not a catalog key.
- ` + "`internal_inconsistency`" + `: stored state was repaired; retry the call.
- ` + "`rate_limited`" + `: slow down and retry.
- ` + "`invalid_input`" + `: a parameter is malformed, e.g. an unknown track name.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
