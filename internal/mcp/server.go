package mcp

import (
	"context"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/scheduler"
)

// SchedulerService defines the scheduling operations exposed to players.
type SchedulerService interface {
	Enqueue(ctx context.Context, playerID, facility string) (*project.Project, error)
	Cancel(ctx context.Context, playerID, projectID string) (scheduler.Refund, error)
	QuoteCancel(ctx context.Context, playerID, projectID string) (scheduler.Refund, error)
	PauseResume(ctx context.Context, playerID, projectID string) (*project.Project, error)
	DecreasePriority(ctx context.Context, playerID, projectID string) error
	IncreasePriority(ctx context.Context, playerID, projectID string) error
	Snapshot(ctx context.Context, playerID string, track project.Track) (*scheduler.Snapshot, error)
	Player(ctx context.Context, playerID string) (*player.Player, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, playerID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Pricer quotes facilities for a player.
type Pricer interface {
	Quote(p *player.Player, facility string, pending int) (project.Quote, error)
}

// Config contains server configuration.
type Config struct {
	Scheduler  SchedulerService
	Activity   ActivityService
	Pricer     Pricer
	Facilities []string
	Resolver   PlayerResolver

	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultPlayer string
	RateLimit     RateLimit
	Logger        *slog.Logger
}

type toolServer struct {
	scheduler  SchedulerService
	activity   ActivityService
	pricer     Pricer
	facilities []string
	limiter    *playerLimiter
	logger     *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "foreman",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio mode is local play: always the default player.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultPlayer))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	ts := &toolServer{
		scheduler:  cfg.Scheduler,
		activity:   cfg.Activity,
		pricer:     cfg.Pricer,
		facilities: cfg.Facilities,
		limiter:    newPlayerLimiter(cfg.RateLimit),
		logger:     logger,
	}
	registerTools(server, ts)

	return server
}
