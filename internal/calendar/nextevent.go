package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/market-hours/internal/contracts"
)

// nextEventHorizonDays bounds the forward search after today
const nextEventHorizonDays = 30

// NextEvent finds the next open or close transition after now. Today's
// open qualifies only while now is strictly before it, today's close
// only while now is strictly before it; otherwise the search walks
// forward day by day up to the horizon and returns the first trading
// day's open. Past the horizon it reports ErrNoUpcomingEvent.
func (e *Engine) NextEvent(ctx context.Context, now time.Time) (*contracts.NextEvent, error) {
	today := contracts.NormalizeDate(now)

	day, err := e.store.Get(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("calendar lookup for %s: %w", contracts.FormatDate(today), err)
	}

	if day != nil && day.IsOpen {
		openUTC, err := etToUTC(today, day.OpenTimeET)
		if err != nil {
			return nil, err
		}
		closeUTC, err := etToUTC(today, day.CloseTimeET)
		if err != nil {
			return nil, err
		}

		if now.Before(openUTC) {
			return newEvent(contracts.EventOpen, openUTC, now, day), nil
		}
		if now.Before(closeUTC) {
			return newEvent(contracts.EventClose, closeUTC, now, day), nil
		}
		// Today's close has passed; fall through to the forward scan.
	}

	search := today.AddDate(0, 0, 1)
	for i := 0; i < nextEventHorizonDays; i++ {
		day, err := e.store.Get(ctx, search)
		if err != nil {
			return nil, fmt.Errorf("calendar lookup for %s: %w", contracts.FormatDate(search), err)
		}

		if day != nil && day.IsOpen {
			openUTC, err := etToUTC(search, day.OpenTimeET)
			if err != nil {
				return nil, err
			}
			return newEvent(contracts.EventOpen, openUTC, now, day), nil
		}

		search = search.AddDate(0, 0, 1)
	}

	return nil, ErrNoUpcomingEvent
}

// newEvent builds a NextEvent with whole seconds remaining, floored
func newEvent(eventType string, eventTime, now time.Time, day *contracts.TradingDay) *contracts.NextEvent {
	return &contracts.NextEvent{
		EventType:        eventType,
		EventTimeUTC:     eventTime,
		TimeUntilSeconds: int64(eventTime.Sub(now) / time.Second),
		NextDate:         day.Date,
		IsEarlyClose:     day.IsEarlyClose,
		Notes:            day.Notes,
	}
}
