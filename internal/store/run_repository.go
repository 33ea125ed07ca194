package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/market-hours/internal/contracts"
)

// RunRepository implements contracts.RunLog on PostgreSQL.
// The calendar_runs table is append-only; rows are never updated.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run log repository
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save appends a refresh-run outcome
func (r *RunRepository) Save(ctx context.Context, rec *contracts.RunRecord) error {
	var payload *string
	if rec.Payload != nil {
		data, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("marshal run payload: %w", err)
		}
		s := string(data)
		payload = &s
	}

	query := `
		INSERT INTO calendar_runs (run_at, status, source, payload)
		VALUES ($1, $2, $3, $4::jsonb)
	`

	if _, err := r.pool.Exec(ctx, query, rec.RunAt, rec.Status, rec.Source, payload); err != nil {
		return fmt.Errorf("insert calendar run: %w", err)
	}
	return nil
}

// GetLast retrieves the most recent run. Returns (nil, nil) when no
// run has been recorded yet.
func (r *RunRepository) GetLast(ctx context.Context) (*contracts.RunRecord, error) {
	query := `
		SELECT run_at, status, source, payload
		FROM calendar_runs
		ORDER BY run_at DESC, id DESC
		LIMIT 1
	`

	var (
		rec     contracts.RunRecord
		payload *string
	)
	err := r.pool.QueryRow(ctx, query).Scan(&rec.RunAt, &rec.Status, &rec.Source, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last calendar run: %w", err)
	}

	if payload != nil {
		if err := json.Unmarshal([]byte(*payload), &rec.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal run payload: %w", err)
		}
	}
	return &rec, nil
}
