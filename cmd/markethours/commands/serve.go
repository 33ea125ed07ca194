package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/market-hours/internal/api"
	"github.com/wonny/market-hours/internal/api/handlers"
	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/internal/scheduler"
	"github.com/wonny/market-hours/internal/scheduler/jobs"
	"github.com/wonny/market-hours/internal/scraper"
	"github.com/wonny/market-hours/internal/store"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/database"
	"github.com/wonny/market-hours/pkg/httputil"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

// serveCmd starts the API server with the refresh scheduler
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the market hours API server",
	Long: `Starts the HTTP API server and the daily calendar refresh scheduler.

Endpoints:
  GET  /health
  GET  /api/market-hours/today
  GET  /api/market-hours/date/{date}
  GET  /api/market-hours/week
  GET  /api/market-hours/next
  GET  /api/market-hours/is-open
  GET  /api/market-hours/raw
  GET  /api/news
  GET  /ws/status

Example:
  go run ./cmd/markethours serve
  go run ./cmd/markethours serve --port 8000`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "override configured server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing market hours service")

	// 3. Connect to database and apply migrations
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := store.Migrate(migrateCtx, db.Pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Connected to database")

	// 4. Connect to Redis (no-op helpers when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "markethours")
	apiLimiter := redis.NewRateLimiter(redisClient, "markethours")

	// 5. Create repositories and the hours engine
	calRepo := store.NewCalendarRepository(db.Pool)
	runRepo := store.NewRunRepository(db.Pool)
	engine := calendar.NewEngine(calRepo, log)

	// 6. Create the refresh pipeline
	httpClient := httputil.New(cfg, log)
	scraperClient := scraper.NewClient(httpClient, log)
	refreshSvc := scraper.NewService(scraperClient, calRepo, runRepo, cfg, log)

	// 7. Schedule the daily refresh
	sched := scheduler.New(log)
	refreshJob := jobs.NewCalendarRefreshJob(refreshSvc, cfg.Scraper.ScheduleHour, log)
	if err := sched.AddJob(refreshJob); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Populate the calendar right away so the API has data on first boot
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := refreshSvc.Refresh(ctx); err != nil {
			log.WithError(err).Error("Initial calendar refresh failed")
		}
	}()

	// 8. Create handlers and router
	h := api.Handlers{
		Market: handlers.NewMarketHandler(engine, runRepo, cache, log),
		News:   handlers.NewNewsHandler(httpClient, cache, log),
		Docs:   handlers.NewDocsHandler(cfg, cache, log),
		Stream: handlers.NewStreamHandler(engine, log),
	}
	router := api.NewRouter(h, cfg, apiLimiter, log)

	// 9. Start server with graceful shutdown
	server := api.New(cfg, log, router)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
