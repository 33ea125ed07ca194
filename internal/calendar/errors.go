package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/market-hours/internal/contracts"
)

var (
	// ErrInvalidDate marks malformed caller-supplied dates. Surfaced
	// immediately, never retried.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoUpcomingEvent means the next-event search exhausted its
	// horizon. A legitimate empty result, not a fault.
	ErrNoUpcomingEvent = errors.New("no upcoming market events within horizon")
)

// ParseDate parses a YYYY-MM-DD caller input, wrapping failures in
// ErrInvalidDate so handlers can map them to a client error.
func ParseDate(s string) (time.Time, error) {
	t, err := contracts.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, nil
}
