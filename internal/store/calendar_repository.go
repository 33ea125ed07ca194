package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/market-hours/internal/contracts"
)

// CalendarRepository implements contracts.CalendarStore on PostgreSQL
type CalendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

// Get retrieves the trading day for a date. Returns (nil, nil) when no
// record exists so callers can tell "absent" apart from a store failure.
func (r *CalendarRepository) Get(ctx context.Context, date time.Time) (*contracts.TradingDay, error) {
	query := `
		SELECT trade_date, open_time_et, close_time_et, is_open, is_early_close,
		       holiday_name, notes, created_at, updated_at
		FROM market_days
		WHERE trade_date = $1
	`

	day, err := scanTradingDay(r.pool.QueryRow(ctx, query, contracts.NormalizeDate(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get market day: %w", err)
	}
	return day, nil
}

// GetRange retrieves trading days within [start, end], sorted by date
func (r *CalendarRepository) GetRange(ctx context.Context, start, end time.Time) ([]*contracts.TradingDay, error) {
	query := `
		SELECT trade_date, open_time_et, close_time_et, is_open, is_early_close,
		       holiday_name, notes, created_at, updated_at
		FROM market_days
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, contracts.NormalizeDate(start), contracts.NormalizeDate(end))
	if err != nil {
		return nil, fmt.Errorf("get market day range: %w", err)
	}
	defer rows.Close()

	var days []*contracts.TradingDay
	for rows.Next() {
		day, err := scanTradingDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// SaveBatch upserts trading days by date. Each row write is atomic;
// created_at is preserved across regenerations while updated_at always
// advances.
func (r *CalendarRepository) SaveBatch(ctx context.Context, days []*contracts.TradingDay) error {
	if len(days) == 0 {
		return nil
	}

	query := `
		INSERT INTO market_days
			(trade_date, open_time_et, close_time_et, is_open, is_early_close,
			 holiday_name, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (trade_date) DO UPDATE SET
			open_time_et   = EXCLUDED.open_time_et,
			close_time_et  = EXCLUDED.close_time_et,
			is_open        = EXCLUDED.is_open,
			is_early_close = EXCLUDED.is_early_close,
			holiday_name   = EXCLUDED.holiday_name,
			notes          = EXCLUDED.notes,
			updated_at     = now()
	`

	for _, day := range days {
		_, err := r.pool.Exec(ctx, query,
			contracts.NormalizeDate(day.Date),
			nullable(day.OpenTimeET),
			nullable(day.CloseTimeET),
			day.IsOpen,
			day.IsEarlyClose,
			nullable(day.HolidayName),
			day.Notes,
		)
		if err != nil {
			return fmt.Errorf("upsert market day %s: %w", contracts.FormatDate(day.Date), err)
		}
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanTradingDay
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTradingDay(row rowScanner) (*contracts.TradingDay, error) {
	var (
		day       contracts.TradingDay
		openTime  *string
		closeTime *string
		holiday   *string
	)

	err := row.Scan(
		&day.Date, &openTime, &closeTime, &day.IsOpen, &day.IsEarlyClose,
		&holiday, &day.Notes, &day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	day.Date = contracts.NormalizeDate(day.Date)
	if openTime != nil {
		day.OpenTimeET = *openTime
	}
	if closeTime != nil {
		day.CloseTimeET = *closeTime
	}
	if holiday != nil {
		day.HolidayName = *holiday
	}
	return &day, nil
}

// nullable maps empty strings to SQL NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
