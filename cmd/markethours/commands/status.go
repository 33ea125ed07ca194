package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/internal/store"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/database"
	"github.com/wonny/market-hours/pkg/logger"
)

// statusCmd prints today's hours and the next market event
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print today's market hours and the next event",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine := calendar.NewEngine(store.NewCalendarRepository(db.Pool), log)

	now := time.Now().UTC()
	today := contracts.NormalizeDate(now)

	hours, err := engine.Resolve(ctx, today, now)
	if err != nil {
		return fmt.Errorf("resolve today: %w", err)
	}

	fmt.Printf("Date:   %s\n", contracts.FormatDate(hours.Date))
	fmt.Printf("Status: %s\n", hours.Status)
	if hours.OpenUTC != nil && hours.CloseUTC != nil {
		fmt.Printf("Open:   %s\n", hours.OpenUTC.Format(time.RFC3339))
		fmt.Printf("Close:  %s\n", hours.CloseUTC.Format(time.RFC3339))
	}
	if hours.Notes != "" {
		fmt.Printf("Notes:  %s\n", hours.Notes)
	}

	event, err := engine.NextEvent(ctx, now)
	if err != nil {
		if errors.Is(err, calendar.ErrNoUpcomingEvent) {
			fmt.Println("\nNo upcoming market events in the next 30 days")
			return nil
		}
		return fmt.Errorf("next event: %w", err)
	}

	fmt.Printf("\nNext event: %s at %s (in %s)\n",
		event.EventType,
		event.EventTimeUTC.Format(time.RFC3339),
		(time.Duration(event.TimeUntilSeconds) * time.Second).String(),
	)
	if event.IsEarlyClose {
		fmt.Println("Note: early close day")
	}

	return nil
}
