package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist yet. Idempotent;
// runs at startup before the first read or refresh.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS market_days (
			trade_date     DATE PRIMARY KEY,
			open_time_et   TEXT,
			close_time_et  TEXT,
			is_open        BOOLEAN NOT NULL,
			is_early_close BOOLEAN NOT NULL DEFAULT FALSE,
			holiday_name   TEXT,
			notes          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS calendar_runs (
			id      BIGSERIAL PRIMARY KEY,
			run_at  TIMESTAMPTZ NOT NULL,
			status  TEXT NOT NULL,
			source  TEXT NOT NULL,
			payload JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_runs_run_at ON calendar_runs (run_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
