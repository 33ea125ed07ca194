package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/market-hours/internal/contracts"
)

func regularDay(date time.Time) *contracts.TradingDay {
	return &contracts.TradingDay{
		Date:        contracts.NormalizeDate(date),
		IsOpen:      true,
		OpenTimeET:  contracts.RegularOpenET,
		CloseTimeET: contracts.RegularCloseET,
		Notes:       "Regular trading hours",
	}
}

func earlyCloseDay(date time.Time, notes string) *contracts.TradingDay {
	return &contracts.TradingDay{
		Date:         contracts.NormalizeDate(date),
		IsOpen:       true,
		OpenTimeET:   contracts.RegularOpenET,
		CloseTimeET:  contracts.EarlyCloseET,
		IsEarlyClose: true,
		Notes:        notes,
	}
}

func holidayDay(date time.Time, name string) *contracts.TradingDay {
	return &contracts.TradingDay{
		Date:        contracts.NormalizeDate(date),
		IsOpen:      false,
		HolidayName: name,
		Notes:       "Market closed for " + name,
	}
}

func TestEtToUTC_DSTOffsets(t *testing.T) {
	// July is EDT (UTC-4), late November is EST (UTC-5)
	julyOpen, err := etToUTC(utc(2025, 7, 7, 0, 0, 0), contracts.RegularOpenET)
	require.NoError(t, err)
	assert.True(t, julyOpen.Equal(utc(2025, 7, 7, 13, 30, 0)))

	novOpen, err := etToUTC(utc(2025, 11, 28, 0, 0, 0), contracts.RegularOpenET)
	require.NoError(t, err)
	assert.True(t, novOpen.Equal(utc(2025, 11, 28, 14, 30, 0)))

	novClose, err := etToUTC(utc(2025, 11, 28, 0, 0, 0), contracts.EarlyCloseET)
	require.NoError(t, err)
	assert.True(t, novClose.Equal(utc(2025, 11, 28, 18, 0, 0)))
}

func TestResolve_RegularDayBoundaries(t *testing.T) {
	date := utc(2025, 7, 7, 0, 0, 0) // Monday, EDT: session 13:30-20:00 UTC
	engine := NewEngine(newMemStore(regularDay(date)), testLogger())
	ctx := context.Background()

	tests := []struct {
		name       string
		now        time.Time
		wantStatus contracts.MarketStatus
	}{
		{name: "one second before open", now: utc(2025, 7, 7, 13, 29, 59), wantStatus: contracts.StatusClosed},
		{name: "exactly at open", now: utc(2025, 7, 7, 13, 30, 0), wantStatus: contracts.StatusOpen},
		{name: "mid session", now: utc(2025, 7, 7, 16, 0, 0), wantStatus: contracts.StatusOpen},
		{name: "exactly at close", now: utc(2025, 7, 7, 20, 0, 0), wantStatus: contracts.StatusOpen},
		{name: "one second after close", now: utc(2025, 7, 7, 20, 0, 1), wantStatus: contracts.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := engine.Resolve(ctx, date, tt.now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resolved.Status)
			assert.True(t, resolved.IsOpen)
			require.NotNil(t, resolved.OpenUTC)
			require.NotNil(t, resolved.CloseUTC)
			assert.True(t, resolved.OpenUTC.Equal(utc(2025, 7, 7, 13, 30, 0)))
			assert.True(t, resolved.CloseUTC.Equal(utc(2025, 7, 7, 20, 0, 0)))
		})
	}
}

func TestResolve_EarlyClose(t *testing.T) {
	// 2025-11-28: EST, early session 14:30-18:00 UTC
	date := utc(2025, 11, 28, 0, 0, 0)
	engine := NewEngine(newMemStore(earlyCloseDay(date, "Day after Thanksgiving")), testLogger())
	ctx := context.Background()

	resolved, err := engine.Resolve(ctx, date, utc(2025, 11, 28, 15, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusEarlyClose, resolved.Status)
	assert.True(t, resolved.IsEarlyClose)
	require.NotNil(t, resolved.CloseUTC)
	assert.True(t, resolved.CloseUTC.Equal(utc(2025, 11, 28, 18, 0, 0)))

	// Still in session shortly before the shortened close
	resolved, err = engine.Resolve(ctx, date, utc(2025, 11, 28, 17, 30, 0))
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusEarlyClose, resolved.Status)

	// The shortened close bound itself is in-session
	resolved, err = engine.Resolve(ctx, date, utc(2025, 11, 28, 18, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusEarlyClose, resolved.Status)

	// One second past the shortened close
	resolved, err = engine.Resolve(ctx, date, utc(2025, 11, 28, 18, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusClosed, resolved.Status)
}

func TestResolve_Holiday(t *testing.T) {
	date := utc(2025, 7, 4, 0, 0, 0)
	engine := NewEngine(newMemStore(holidayDay(date, "Independence Day")), testLogger())

	for _, now := range []time.Time{
		utc(2025, 7, 4, 0, 0, 0),
		utc(2025, 7, 4, 15, 0, 0),
		utc(2025, 7, 4, 23, 59, 59),
	} {
		resolved, err := engine.Resolve(context.Background(), date, now)
		require.NoError(t, err)

		assert.Equal(t, contracts.StatusClosed, resolved.Status)
		assert.False(t, resolved.IsOpen)
		assert.Nil(t, resolved.OpenUTC)
		assert.Nil(t, resolved.CloseUTC)
		assert.Equal(t, "Market closed for Independence Day", resolved.Notes)
	}
}

func TestResolve_OtherDayIsClosed(t *testing.T) {
	// Resolving tomorrow while today's session is live must report CLOSED
	today := utc(2025, 7, 7, 0, 0, 0)
	tomorrow := utc(2025, 7, 8, 0, 0, 0)
	engine := NewEngine(newMemStore(regularDay(today), regularDay(tomorrow)), testLogger())

	resolved, err := engine.Resolve(context.Background(), tomorrow, utc(2025, 7, 7, 16, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, contracts.StatusClosed, resolved.Status)
	assert.True(t, resolved.IsOpen, "the date itself is still a trading day")
	assert.NotNil(t, resolved.OpenUTC)
}

func TestResolve_DefaultWeekday(t *testing.T) {
	// Empty store: weekdays resolve to the estimated regular session
	engine := NewEngine(newMemStore(), testLogger())
	date := utc(2025, 7, 9, 0, 0, 0) // Wednesday

	resolved, err := engine.Resolve(context.Background(), date, utc(2025, 7, 1, 12, 0, 0))
	require.NoError(t, err)

	assert.True(t, resolved.IsOpen)
	assert.False(t, resolved.IsEarlyClose)
	assert.Equal(t, "Regular trading hours (estimated)", resolved.Notes)
	require.NotNil(t, resolved.OpenUTC)
	require.NotNil(t, resolved.CloseUTC)
	assert.True(t, resolved.OpenUTC.Equal(utc(2025, 7, 9, 13, 30, 0)))
	assert.True(t, resolved.CloseUTC.Equal(utc(2025, 7, 9, 20, 0, 0)))
	assert.Equal(t, contracts.StatusClosed, resolved.Status)
}

func TestResolve_DefaultWeekend(t *testing.T) {
	engine := NewEngine(newMemStore(), testLogger())
	date := utc(2025, 7, 5, 0, 0, 0) // Saturday

	resolved, err := engine.Resolve(context.Background(), date, utc(2025, 7, 5, 15, 0, 0))
	require.NoError(t, err)

	assert.False(t, resolved.IsOpen)
	assert.Equal(t, contracts.StatusClosed, resolved.Status)
	assert.Equal(t, "Weekend", resolved.Notes)
	assert.Nil(t, resolved.OpenUTC)
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	engine := NewEngine(store, testLogger())

	resolved, err := engine.Resolve(context.Background(), utc(2025, 7, 7, 0, 0, 0), utc(2025, 7, 7, 16, 0, 0))
	require.Error(t, err, "a failed store read must never fall back to defaults")
	assert.Nil(t, resolved)
}

func TestIsOpenNow(t *testing.T) {
	date := utc(2025, 7, 7, 0, 0, 0)
	engine := NewEngine(newMemStore(regularDay(date), holidayDay(utc(2025, 7, 4, 0, 0, 0), "Independence Day")), testLogger())
	ctx := context.Background()

	tests := []struct {
		name       string
		instant    time.Time
		wantOpen   bool
		wantReason string
	}{
		{name: "no record for date", instant: utc(2025, 7, 9, 16, 0, 0), wantOpen: false, wantReason: "Market closed"},
		{name: "holiday", instant: utc(2025, 7, 4, 16, 0, 0), wantOpen: false, wantReason: "Market closed"},
		{name: "before open", instant: utc(2025, 7, 7, 13, 29, 59), wantOpen: false, wantReason: "Outside trading hours"},
		{name: "at open inclusive", instant: utc(2025, 7, 7, 13, 30, 0), wantOpen: true, wantReason: "Market open"},
		{name: "mid session", instant: utc(2025, 7, 7, 17, 0, 0), wantOpen: true, wantReason: "Market open"},
		{name: "at close inclusive", instant: utc(2025, 7, 7, 20, 0, 0), wantOpen: true, wantReason: "Market open"},
		{name: "after close", instant: utc(2025, 7, 7, 20, 0, 1), wantOpen: false, wantReason: "Outside trading hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, reason, err := engine.IsOpenNow(ctx, tt.instant)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOpen, open)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestIsOpenNow_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	engine := NewEngine(store, testLogger())

	_, _, err := engine.IsOpenNow(context.Background(), utc(2025, 7, 7, 16, 0, 0))
	require.Error(t, err)
}
