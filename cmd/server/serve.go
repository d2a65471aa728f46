package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/foreman/internal/catalog"
	"github.com/rpggio/foreman/internal/config"
	"github.com/rpggio/foreman/internal/domain/activity"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/effects"
	"github.com/rpggio/foreman/internal/engine"
	"github.com/rpggio/foreman/internal/mcp"
	"github.com/rpggio/foreman/internal/scheduler"
	"github.com/rpggio/foreman/internal/sqlite"
	"github.com/rpggio/foreman/internal/transport"
	"github.com/spf13/cobra"
)

const defaultStartingMoney = 500000

func newServeCommand(load configLoader) *cobra.Command {
	var startingMoney float64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation clock and the MCP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			return serve(cfg, logger, startingMoney)
		},
	}
	cmd.Flags().Float64Var(&startingMoney, "starting-money", defaultStartingMoney, "funds of the default player when it is created")
	return cmd
}

func serve(cfg config.Config, logger *slog.Logger, startingMoney float64) error {
	db, err := openDB(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	pricer, err := catalog.NewPricer(cat, cfg.Simulation.InGameSecondsPerTick)
	if err != nil {
		return err
	}

	playerSvc := player.NewService(sqlite.NewPlayerRepository(db), logger)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	apiKeys := sqlite.NewAPIKeyRepository(db)

	clock := &engine.Clock{}
	sched, err := scheduler.New(scheduler.Config{
		Store:          sqlite.NewScheduleStore(db),
		Pricer:         pricer,
		Clock:          clock,
		Hook:           effects.NewHook(cat, logger),
		Notifier:       effects.NewActivityNotifier(activitySvc, logger),
		Logger:         logger,
		RefundFraction: cfg.Simulation.RefundFraction,
		Parallelism:    cfg.Simulation.PlayerParallelism,
	})
	if err != nil {
		return err
	}
	metrics.RegisterSet(sched.Metrics().Set())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without auth every request plays as the default player.
	if cfg.Transport.Mode == "stdio" || !cfg.Auth.Enabled {
		if err := ensurePlayer(ctx, playerSvc, cfg.Simulation.DefaultPlayer, startingMoney); err != nil {
			return err
		}
	}

	eng := engine.New(clock, sched, sqlite.NewSimStateRepository(db), cfg.Simulation.TickInterval, logger)
	if err := eng.Restore(ctx); err != nil {
		return err
	}
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("simulation stopped", "error", err)
		}
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Scheduler:     sched,
		Activity:      activitySvc,
		Pricer:        pricer,
		Facilities:    cat.Keys(),
		Resolver:      apiKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		DefaultPlayer: cfg.Simulation.DefaultPlayer,
		RateLimit:     mcp.RateLimit{PerSecond: cfg.RateLimit.PerSecond, Burst: cfg.RateLimit.Burst},
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	handler := transport.NewServer(transport.Options{
		MCP: transport.NewMCPHandler(mcpServer, 30*time.Minute),
		WriteMetrics: func(w io.Writer) {
			metrics.WritePrometheus(w, true)
		},
		Ready: eng.Running,
	})
	return runHTTPMode(ctx, logger, handler, cfg.Server.Host, cfg.Server.Port)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func ensurePlayer(ctx context.Context, svc *player.Service, id string, money float64) error {
	_, err := svc.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, player.ErrPlayerNotFound) {
		return err
	}
	_, err = svc.Create(ctx, player.CreateRequest{ID: id, Name: id, Money: money})
	return err
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return waitForShutdown(logger, httpServer)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

// stderrIfStdio keeps stdout clean for JSON-RPC in stdio mode.
func stderrIfStdio(cfg config.Config) io.Writer {
	if cfg.Transport.Mode == "stdio" {
		return os.Stderr
	}
	return os.Stdout
}
