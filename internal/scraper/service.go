package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
)

// Sources fetches exchange calendar pages. Satisfied by *Client.
type Sources interface {
	FetchAll(ctx context.Context) []SourceResult
}

// Service runs the calendar refresh pipeline: fetch exchange pages for
// provenance, regenerate the trading-day window, persist it, and record
// the run. Exchange fetch failures are never fatal; generated days come
// from the built-in holiday tables either way.
type Service struct {
	sources Sources
	store   contracts.CalendarStore
	runLog  contracts.RunLog
	cfg     *config.Config
	logger  *logger.Logger
}

// NewService creates a new refresh service.
func NewService(
	sources Sources,
	store contracts.CalendarStore,
	runLog contracts.RunLog,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		sources: sources,
		store:   store,
		runLog:  runLog,
		cfg:     cfg,
		logger:  log.WithField("module", "refresh"),
	}
}

// Refresh executes one full refresh cycle.
func (s *Service) Refresh(ctx context.Context) error {
	started := time.Now().UTC()

	// 1. Fetch exchange sources (best-effort, provenance only)
	var results []SourceResult
	if s.cfg.Scraper.Enabled {
		results = s.sources.FetchAll(ctx)
	} else {
		s.logger.Info("Exchange scraping disabled, using built-in tables only")
	}

	// 2. Regenerate the trading-day window around today
	today := contracts.NormalizeDate(started)
	start := today.AddDate(0, 0, -s.cfg.Scraper.PastDays)
	end := today.AddDate(0, 0, s.cfg.Scraper.FutureDays)

	days := calendar.Generate(start, end)

	// 3. Persist
	if err := s.store.SaveBatch(ctx, days); err != nil {
		s.recordRun(ctx, "failed", results, len(days), err)
		return fmt.Errorf("save trading days: %w", err)
	}

	s.recordRun(ctx, "success", results, len(days), nil)

	s.logger.WithFields(map[string]interface{}{
		"days_generated": len(days),
		"from":           contracts.FormatDate(start),
		"to":             contracts.FormatDate(end),
		"duration_ms":    time.Since(started).Milliseconds(),
	}).Info("Calendar refresh completed")

	return nil
}

// recordRun appends a run record. Run logging is diagnostics, so a failure
// here is logged and swallowed.
func (s *Service) recordRun(ctx context.Context, status string, results []SourceResult, dayCount int, runErr error) {
	payload := map[string]interface{}{
		"days_generated": dayCount,
		"sources":        results,
	}
	if runErr != nil {
		payload["error"] = runErr.Error()
	}

	rec := &contracts.RunRecord{
		RunAt:   time.Now().UTC(),
		Status:  status,
		Source:  runSource,
		Payload: payload,
	}

	if err := s.runLog.Save(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("Failed to record refresh run")
	}
}
