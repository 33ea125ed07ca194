package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here only.

// CalendarStore is the durable owner of TradingDay records.
// Get returns (nil, nil) when no record exists for the date; an error
// means the store itself could not be read and callers must not
// substitute defaults for it.
type CalendarStore interface {
	Get(ctx context.Context, date time.Time) (*TradingDay, error)
	GetRange(ctx context.Context, start, end time.Time) ([]*TradingDay, error)
	SaveBatch(ctx context.Context, days []*TradingDay) error
}

// RunLog records calendar-refresh outcomes. Append-only; the read path
// never consumes it beyond the diagnostics endpoint.
type RunLog interface {
	Save(ctx context.Context, rec *RunRecord) error
	GetLast(ctx context.Context) (*RunRecord, error)
}
