package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
)

// memStore is an in-memory CalendarStore for engine tests
type memStore struct {
	days map[string]*contracts.TradingDay
	err  error // when set, every call fails with it
}

func newMemStore(days ...*contracts.TradingDay) *memStore {
	s := &memStore{days: make(map[string]*contracts.TradingDay)}
	for _, d := range days {
		s.days[contracts.FormatDate(d.Date)] = d
	}
	return s
}

func (s *memStore) Get(ctx context.Context, date time.Time) (*contracts.TradingDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	day, ok := s.days[contracts.FormatDate(date)]
	if !ok {
		return nil, nil
	}
	return day, nil
}

func (s *memStore) GetRange(ctx context.Context, start, end time.Time) ([]*contracts.TradingDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*contracts.TradingDay
	for _, d := range s.days {
		if !d.Date.Before(contracts.NormalizeDate(start)) && !d.Date.After(contracts.NormalizeDate(end)) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memStore) SaveBatch(ctx context.Context, days []*contracts.TradingDay) error {
	if s.err != nil {
		return s.err
	}
	for _, d := range days {
		s.days[contracts.FormatDate(d.Date)] = d
	}
	return nil
}

// testLogger builds a quiet logger for tests
func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
	})
}

// utc is shorthand for constructing UTC instants in tests
func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}
