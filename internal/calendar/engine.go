package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/logger"
)

// eastern is the exchange's local zone. The IANA database handles the
// DST transitions; fixed-offset math would misclassify status near them.
var eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("load America/New_York: %v", err))
	}
	eastern = loc
}

// Engine resolves market hours for dates against the calendar store.
// Pure read side: it never writes to the store, and the absent-record
// default below is never persisted.
type Engine struct {
	store  contracts.CalendarStore
	logger *logger.Logger
}

// NewEngine creates a new resolution engine
func NewEngine(store contracts.CalendarStore, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: log,
	}
}

// etToUTC converts an Eastern wall-clock time on a date to a UTC instant
func etToUTC(date time.Time, timeET string) (time.Time, error) {
	clock, err := time.Parse("15:04:05", timeET)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse session time %q: %w", timeET, err)
	}

	date = date.UTC()
	local := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, eastern)
	return local.UTC(), nil
}

// defaultDay synthesizes a record for dates the generator has not
// reached yet, so today and near-future dates always resolve. Weekends
// default to closed, weekdays to an estimated regular session.
func defaultDay(date time.Time) *contracts.TradingDay {
	if contracts.IsWeekend(date) {
		return &contracts.TradingDay{
			Date:   date,
			IsOpen: false,
			Notes:  "Weekend",
		}
	}

	return &contracts.TradingDay{
		Date:        date,
		IsOpen:      true,
		OpenTimeET:  contracts.RegularOpenET,
		CloseTimeET: contracts.RegularCloseET,
		Notes:       "Regular trading hours (estimated)",
	}
}

// Resolve looks up targetDate and classifies now against its session.
// Store errors propagate; the default applies only when the store
// affirmatively reports no record.
func (e *Engine) Resolve(ctx context.Context, targetDate, now time.Time) (*contracts.ResolvedHours, error) {
	targetDate = contracts.NormalizeDate(targetDate)

	day, err := e.store.Get(ctx, targetDate)
	if err != nil {
		return nil, fmt.Errorf("calendar lookup for %s: %w", contracts.FormatDate(targetDate), err)
	}

	if day == nil {
		day = defaultDay(targetDate)
		e.logger.WithField("date", contracts.FormatDate(targetDate)).Debug("No calendar record, using default")
	}

	if !day.IsOpen {
		notes := day.Notes
		if day.HolidayName != "" {
			notes = "Market closed for " + day.HolidayName
		}
		return &contracts.ResolvedHours{
			Date:   targetDate,
			IsOpen: false,
			Notes:  notes,
			Status: contracts.StatusClosed,
		}, nil
	}

	openUTC, err := etToUTC(targetDate, day.OpenTimeET)
	if err != nil {
		return nil, err
	}
	closeUTC, err := etToUTC(targetDate, day.CloseTimeET)
	if err != nil {
		return nil, err
	}

	status := contracts.StatusClosed
	if contracts.SameDate(now, targetDate) {
		// Only strictly outside the session is CLOSED; equality with
		// either bound counts as in-session here.
		if !now.Before(openUTC) && !now.After(closeUTC) {
			if day.IsEarlyClose {
				status = contracts.StatusEarlyClose
			} else {
				status = contracts.StatusOpen
			}
		}
	}

	return &contracts.ResolvedHours{
		Date:         targetDate,
		OpenUTC:      &openUTC,
		CloseUTC:     &closeUTC,
		IsOpen:       true,
		IsEarlyClose: day.IsEarlyClose,
		Notes:        day.Notes,
		Status:       status,
	}, nil
}

// IsOpenNow answers whether the market trades at the given instant.
// Unlike Resolve it never synthesizes a default: no record means
// closed. Both session bounds are inclusive.
func (e *Engine) IsOpenNow(ctx context.Context, instant time.Time) (bool, string, error) {
	date := contracts.NormalizeDate(instant)

	day, err := e.store.Get(ctx, date)
	if err != nil {
		return false, "", fmt.Errorf("calendar lookup for %s: %w", contracts.FormatDate(date), err)
	}

	if day == nil || !day.IsOpen {
		return false, "Market closed", nil
	}

	openUTC, err := etToUTC(date, day.OpenTimeET)
	if err != nil {
		return false, "", err
	}
	closeUTC, err := etToUTC(date, day.CloseTimeET)
	if err != nil {
		return false, "", err
	}

	if !instant.Before(openUTC) && !instant.After(closeUTC) {
		return true, "Market open", nil
	}
	return false, "Outside trading hours", nil
}
