package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/market-hours/internal/scraper"
	"github.com/wonny/market-hours/pkg/logger"
)

// CalendarRefreshJob regenerates the trading-day calendar once a day.
type CalendarRefreshJob struct {
	service *scraper.Service
	logger  *logger.Logger
	hourUTC int
}

// NewCalendarRefreshJob creates the daily refresh job. hourUTC is the
// UTC hour of day (0-23) at which the refresh runs.
func NewCalendarRefreshJob(service *scraper.Service, hourUTC int, log *logger.Logger) *CalendarRefreshJob {
	return &CalendarRefreshJob{
		service: service,
		logger:  log.WithField("job", "calendar_refresh"),
		hourUTC: hourUTC,
	}
}

// Name returns the job name.
func (j *CalendarRefreshJob) Name() string {
	return "calendar_refresh"
}

// Schedule returns the cron expression (seconds field included).
func (j *CalendarRefreshJob) Schedule() string {
	return fmt.Sprintf("0 0 %d * * *", j.hourUTC)
}

// Run executes one calendar refresh.
func (j *CalendarRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Running scheduled calendar refresh")

	if err := j.service.Refresh(ctx); err != nil {
		return fmt.Errorf("calendar refresh: %w", err)
	}
	return nil
}
