// Command api is the footy tipping API server.
//
// Usage:
//
//	tipping-api
//	API_PORT=8080 tipping-api

// @title Footy Tipping API
// @version 1.0.0
// @description Weekly rugby league tipping: fixtures, tips with visibility windows, round chat and asynchronous match intelligence reports.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name Footy Tipping
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/footy-tipping/internal/analyst"
	"github.com/albapepper/footy-tipping/internal/api"
	"github.com/albapepper/footy-tipping/internal/api/handler"
	"github.com/albapepper/footy-tipping/internal/chat"
	"github.com/albapepper/footy-tipping/internal/config"
	"github.com/albapepper/footy-tipping/internal/db"
	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/logging"
	"github.com/albapepper/footy-tipping/internal/maintenance"
	"github.com/albapepper/footy-tipping/internal/provider"
	"github.com/albapepper/footy-tipping/internal/report"
	"github.com/albapepper/footy-tipping/internal/tips"
	"github.com/albapepper/footy-tipping/internal/window"

	_ "github.com/albapepper/footy-tipping/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg)
	logger.Info("Configuration loaded", "environment", cfg.Environment, "timezone", cfg.Timezone)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	st, closeDB, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer closeDB()
	if err := st.Migrate(ctx); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	policy := window.New(window.DefaultConfig(loc))
	tipsSvc := tips.NewService(st, policy, nil, logger)
	chatSvc := chat.NewService(st, nil, logger)

	// Report generator + worker pool
	client := analyst.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, 60, logger)
	gen := analyst.New(client, analyst.Options{
		Competition: config.CompetitionName,
		SearchCount: cfg.ReportSearchCount,
		Location:    loc,
	}, logger)
	pool := report.NewPool(cfg.ReportWorkers, cfg.ReportQueueSize, logger)
	tracker := report.NewTracker(st, gen, pool, report.Options{Timeout: cfg.ReportTimeout}, logger)
	defer tracker.Close()
	if !gen.Enabled() {
		logger.Info("Report generation disabled (no OPENAI_API_KEY)")
	}

	// Scheduled jobs (fixture sync, stats, optional auto-assign)
	feed := provider.NewClient(cfg.FixturesFeedURL, 30, logger)
	tasks := maintenance.Tasks{
		UpdateStats: func(ctx context.Context) error {
			_, err := tipsSvc.UpdateStats(ctx)
			return err
		},
		AutoAssign: func(ctx context.Context) error {
			_, err := tipsSvc.AutoAssign(ctx, nil)
			return err
		},
	}
	if cfg.FixturesFeedURL != "" {
		tasks.SyncFixtures = func(ctx context.Context) error {
			_, err := fixture.Sync(ctx, feed, st, logger)
			return err
		}
	} else {
		logger.Info("Fixture sync disabled (no FIXTURES_FEED_URL)")
	}
	mcfg := maintenance.DefaultConfig(loc)
	mcfg.FixtureSyncInterval = cfg.FixtureSyncInterval
	mcfg.AutoAssign = cfg.AutoAssignEnabled
	maintenanceDone := make(chan struct{})
	go func() {
		defer close(maintenanceDone)
		if err := maintenance.Start(ctx, tasks, mcfg, logger); err != nil {
			logger.Error("Maintenance scheduler failed", "error", err)
		}
	}()

	// Create router
	h := handler.New(st, tipsSvc, chatSvc, tracker, cfg, logger)
	router := api.NewRouter(h, st, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Footy Tipping API",
			"addr", addr,
			"environment", cfg.Environment,
			"report_workers", cfg.ReportWorkers,
			"docs", fmt.Sprintf("http://localhost:%d/docs/index.html", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}

	// Scheduled tasks use the store; let them finish before it closes.
	select {
	case <-maintenanceDone:
	case <-shutdownCtx.Done():
		logger.Warn("Maintenance scheduler did not stop in time")
	}
	logger.Info("Server stopped")
}
