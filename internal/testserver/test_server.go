// Package testserver assembles the full foreman stack on an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/foreman/internal/catalog"
	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/effects"
	"github.com/rpggio/foreman/internal/engine"
	"github.com/rpggio/foreman/internal/mcp"
	"github.com/rpggio/foreman/internal/scheduler"
	"github.com/rpggio/foreman/internal/sqlite"
	"github.com/rpggio/foreman/internal/transport"
	"github.com/stretchr/testify/require"
)

// Options tunes the assembled stack.
type Options struct {
	PlayerID       string
	Token          string
	Money          float64
	Workers        int
	Levels         map[string]int
	AuthEnabled    bool
	RateLimit      mcp.RateLimit
	SecondsPerTick float64
}

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Clock     *engine.Clock
	Engine    *engine.Engine
	Scheduler *scheduler.Scheduler
	MCP       *sdkmcp.Server
	APIKeys   *sqlite.APIKeyRepository
	Players   *sqlite.PlayerRepository
	Token     string
	PlayerID  string
}

func New(t *testing.T, opts Options) *TestServer {
	t.Helper()
	if opts.PlayerID == "" {
		opts.PlayerID = "player-1"
	}
	if opts.Token == "" {
		opts.Token = "test-token"
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	// One hour per tick: small power facilities finish in a single tick.
	if opts.SecondsPerTick == 0 {
		opts.SecondsPerTick = 3600
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	cat, err := catalog.Default()
	require.NoError(t, err)
	pricer, err := catalog.NewPricer(cat, opts.SecondsPerTick)
	require.NoError(t, err)

	playerRepo := sqlite.NewPlayerRepository(db)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	apiKeys := sqlite.NewAPIKeyRepository(db)
	simState := sqlite.NewSimStateRepository(db)

	clock := &engine.Clock{}
	sched, err := scheduler.New(scheduler.Config{
		Store:    sqlite.NewScheduleStore(db),
		Pricer:   pricer,
		Clock:    clock,
		Hook:     effects.NewHook(cat, nil),
		Notifier: effects.NewActivityNotifier(activitySvc, nil),
	})
	require.NoError(t, err)
	eng := engine.New(clock, sched, simState, time.Second, nil)
	require.NoError(t, eng.Restore(context.Background()))

	mcpServer := mcp.NewServer(mcp.Config{
		Scheduler:     sched,
		Activity:      activitySvc,
		Pricer:        pricer,
		Facilities:    cat.Keys(),
		Resolver:      apiKeys,
		AuthEnabled:   opts.AuthEnabled,
		TransportMode: "http",
		DefaultPlayer: opts.PlayerID,
		RateLimit:     opts.RateLimit,
	})
	server := httptest.NewServer(transport.NewServer(transport.Options{
		MCP:          transport.NewMCPHandler(mcpServer, 0),
		WriteMetrics: func(w io.Writer) { sched.Metrics().Set().WritePrometheus(w) },
	}))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Clock:     clock,
		Engine:    eng,
		Scheduler: sched,
		MCP:       mcpServer,
		APIKeys:   apiKeys,
		Players:   playerRepo,
		Token:     opts.Token,
		PlayerID:  opts.PlayerID,
	}

	require.NoError(t, ts.AddPlayer(opts.PlayerID, opts.Money, opts.Workers, opts.Levels))
	require.NoError(t, apiKeys.Add(context.Background(), opts.PlayerID, opts.Token, "test"))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddPlayer stores a player directly, bypassing defaults.
func (ts *TestServer) AddPlayer(id string, money float64, workers int, levels map[string]int) error {
	if levels == nil {
		levels = map[string]int{}
	}
	return ts.Players.Create(context.Background(), &player.Player{
		ID:                  id,
		Name:                id,
		Money:               money,
		ConstructionWorkers: workers,
		Levels:              levels,
		Installed:           map[string]int{},
		CreatedAt:           time.Now(),
	})
}

// Step advances the simulation n ticks.
func (ts *TestServer) Step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, ts.Engine.Step(context.Background()))
	}
}

// Connect opens an in-memory MCP session. Requests run as the default
// player, so this only works with auth disabled.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := ts.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// ConnectHTTP opens an MCP session over streamable HTTP with a bearer token.
func (ts *TestServer) ConnectHTTP(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token, base: http.DefaultTransport}},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearer struct {
	token string
	base  http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if b.token != "" {
		r.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.base.RoundTrip(r)
}

// Call invokes a tool and decodes its structured result into out.
func Call(t *testing.T, session *sdkmcp.ClientSession, tool string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: tool, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}
