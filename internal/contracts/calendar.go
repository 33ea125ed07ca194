package contracts

import (
	"fmt"
	"time"
)

// MarketStatus classifies the market relative to an instant
type MarketStatus string

const (
	StatusOpen       MarketStatus = "OPEN"
	StatusClosed     MarketStatus = "CLOSED"
	StatusEarlyClose MarketStatus = "EARLY_CLOSE"
)

// Standard NYSE/NASDAQ session bounds, Eastern wall clock
const (
	RegularOpenET  = "09:30:00"
	RegularCloseET = "16:00:00"
	EarlyCloseET   = "13:00:00"
)

// TradingDay is one calendar date of the exchange calendar.
// Open/close times are Eastern wall-clock strings ("09:30:00") and are
// set only when IsOpen is true.
type TradingDay struct {
	Date         time.Time `json:"date"`
	OpenTimeET   string    `json:"open_time_et,omitempty"`
	CloseTimeET  string    `json:"close_time_et,omitempty"`
	IsOpen       bool      `json:"is_open"`
	IsEarlyClose bool      `json:"is_early_close"`
	HolidayName  string    `json:"holiday_name,omitempty"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Validate checks the record's internal consistency
func (d *TradingDay) Validate() error {
	if d.Date.IsZero() {
		return fmt.Errorf("trading day has no date")
	}

	if d.IsOpen {
		if d.OpenTimeET == "" || d.CloseTimeET == "" {
			return fmt.Errorf("open trading day %s is missing session bounds", FormatDate(d.Date))
		}
		if d.OpenTimeET >= d.CloseTimeET {
			return fmt.Errorf("trading day %s has open %s not before close %s",
				FormatDate(d.Date), d.OpenTimeET, d.CloseTimeET)
		}
		return nil
	}

	if d.OpenTimeET != "" || d.CloseTimeET != "" {
		return fmt.Errorf("closed day %s carries session bounds", FormatDate(d.Date))
	}
	return nil
}

// ResolvedHours is the engine's answer for one date. UTC bounds are nil
// when the market does not trade that date. Never persisted.
type ResolvedHours struct {
	Date         time.Time    `json:"-"`
	OpenUTC      *time.Time   `json:"open_time_utc,omitempty"`
	CloseUTC     *time.Time   `json:"close_time_utc,omitempty"`
	IsOpen       bool         `json:"is_open"`
	IsEarlyClose bool         `json:"is_early_close"`
	Notes        string       `json:"notes"`
	Status       MarketStatus `json:"status"`
}

// Next-event kinds
const (
	EventOpen  = "open"
	EventClose = "close"
)

// NextEvent is the next open or close transition. Never persisted.
type NextEvent struct {
	EventType        string    `json:"event_type"`
	EventTimeUTC     time.Time `json:"event_time_utc"`
	TimeUntilSeconds int64     `json:"time_until_seconds"`
	NextDate         time.Time `json:"-"`
	IsEarlyClose     bool      `json:"is_early_close"`
	Notes            string    `json:"notes"`
}

// WeekSchedule is seven consecutive resolved dates
type WeekSchedule struct {
	StartDate time.Time
	EndDate   time.Time
	Days      []ResolvedHours
}

// RunRecord is one calendar-refresh outcome for the append-only run log
type RunRecord struct {
	RunAt   time.Time              `json:"run_at"`
	Status  string                 `json:"status"` // success, failed
	Source  string                 `json:"source"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NormalizeDate truncates an instant to its UTC calendar date
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two instants fall on the same UTC calendar date
func SameDate(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD date string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// IsWeekend reports whether a date falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
