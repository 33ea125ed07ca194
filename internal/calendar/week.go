package calendar

import (
	"context"
	"time"

	"github.com/wonny/market-hours/internal/contracts"
)

// WeekSchedule resolves the 7 consecutive dates starting at start.
// A zero start defaults to now's UTC calendar date.
func (e *Engine) WeekSchedule(ctx context.Context, start, now time.Time) (*contracts.WeekSchedule, error) {
	if start.IsZero() {
		start = now
	}
	start = contracts.NormalizeDate(start)
	end := start.AddDate(0, 0, 6)

	days := make([]contracts.ResolvedHours, 0, 7)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		resolved, err := e.Resolve(ctx, current, now)
		if err != nil {
			return nil, err
		}
		days = append(days, *resolved)
	}

	return &contracts.WeekSchedule{
		StartDate: start,
		EndDate:   end,
		Days:      days,
	}, nil
}
