package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/market-hours/internal/scraper"
	"github.com/wonny/market-hours/internal/store"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/database"
	"github.com/wonny/market-hours/pkg/httputil"
	"github.com/wonny/market-hours/pkg/logger"
)

// refreshCmd runs one calendar refresh and exits
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenerate the trading-day calendar once",
	Long: `Fetches the exchange calendar pages, regenerates the trading-day
window around today, and persists it. Exits after one run.

Example:
  go run ./cmd/markethours refresh`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := store.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	calRepo := store.NewCalendarRepository(db.Pool)
	runRepo := store.NewRunRepository(db.Pool)

	httpClient := httputil.New(cfg, log)
	scraperClient := scraper.NewClient(httpClient, log)
	refreshSvc := scraper.NewService(scraperClient, calRepo, runRepo, cfg, log)

	if err := refreshSvc.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	fmt.Println("Calendar refresh completed")
	return nil
}
