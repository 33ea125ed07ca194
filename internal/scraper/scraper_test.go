package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	return logger.New(cfg)
}

func testConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			Enabled:    true,
			PastDays:   30,
			FutureDays: 730,
		},
	}
}

// fakeStore records SaveBatch calls and can fail on demand.
type fakeStore struct {
	saved   []*contracts.TradingDay
	saveErr error
}

func (s *fakeStore) Get(ctx context.Context, date time.Time) (*contracts.TradingDay, error) {
	return nil, nil
}

func (s *fakeStore) GetRange(ctx context.Context, start, end time.Time) ([]*contracts.TradingDay, error) {
	return nil, nil
}

func (s *fakeStore) SaveBatch(ctx context.Context, days []*contracts.TradingDay) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = days
	return nil
}

// fakeRunLog records run records in memory.
type fakeRunLog struct {
	recs []*contracts.RunRecord
}

func (l *fakeRunLog) Save(ctx context.Context, rec *contracts.RunRecord) error {
	l.recs = append(l.recs, rec)
	return nil
}

func (l *fakeRunLog) GetLast(ctx context.Context) (*contracts.RunRecord, error) {
	if len(l.recs) == 0 {
		return nil, nil
	}
	return l.recs[len(l.recs)-1], nil
}

// fakeSources returns canned per-source results.
type fakeSources struct {
	results []SourceResult
}

func (f *fakeSources) FetchAll(ctx context.Context) []SourceResult {
	return f.results
}

func TestParseCalendarTables(t *testing.T) {
	html := `
	<html><body>
	<table>
	  <tr><th>Holiday</th><th>Date</th></tr>
	  <tr><td>New Year's Day</td><td>January 1, 2026</td></tr>
	  <tr><td>Independence Day (Early Close)</td><td>July 3, 2026</td></tr>
	  <tr><td></td><td></td></tr>
	  <tr><td>Some banner text with no date</td><td>and more text</td></tr>
	</table>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	entries := parseCalendarTables(doc)
	require.Len(t, entries, 2)

	assert.Equal(t, "New Year's Day", entries[0].Label)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.False(t, entries[0].EarlyClose)

	assert.Equal(t, "Independence Day (Early Close)", entries[1].Label)
	assert.Equal(t, time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC), entries[1].Date)
	assert.True(t, entries[1].EarlyClose)
}

func TestParseCalendarTables_SkipsTimeCells(t *testing.T) {
	html := `
	<table>
	  <tr><td>07/04/2025</td><td>9:30 a.m.</td><td>Independence Day</td></tr>
	</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	entries := parseCalendarTables(doc)
	require.Len(t, entries, 1)
	assert.Equal(t, "Independence Day", entries[0].Label)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), entries[0].Date)
}

func TestRefresh_Success(t *testing.T) {
	store := &fakeStore{}
	runLog := &fakeRunLog{}
	sources := &fakeSources{results: []SourceResult{
		{Source: SourceNYSE, Success: true},
		{Source: SourceNASDAQ, Success: false, Error: "status 403"},
	}}

	svc := NewService(sources, store, runLog, testConfig(), testLogger(t))

	err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// 30 past + today + 730 future
	assert.Len(t, store.saved, 761)

	require.Len(t, runLog.recs, 1)
	rec := runLog.recs[0]
	assert.Equal(t, "success", rec.Status)
	assert.Equal(t, "NYSE+NASDAQ+Fallback", rec.Source)
	assert.Equal(t, 761, rec.Payload["days_generated"])
	assert.WithinDuration(t, time.Now().UTC(), rec.RunAt, 5*time.Second)
}

func TestRefresh_SourceFailuresAreNonFatal(t *testing.T) {
	store := &fakeStore{}
	runLog := &fakeRunLog{}
	sources := &fakeSources{results: []SourceResult{
		{Source: SourceNYSE, Success: false, Error: "connection refused"},
		{Source: SourceNASDAQ, Success: false, Error: "connection refused"},
	}}

	svc := NewService(sources, store, runLog, testConfig(), testLogger(t))

	err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, store.saved)
	require.Len(t, runLog.recs, 1)
	assert.Equal(t, "success", runLog.recs[0].Status)
}

func TestRefresh_StoreFailureRecordsFailedRun(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection reset")}
	runLog := &fakeRunLog{}
	sources := &fakeSources{}

	svc := NewService(sources, store, runLog, testConfig(), testLogger(t))

	err := svc.Refresh(context.Background())
	require.Error(t, err)

	require.Len(t, runLog.recs, 1)
	rec := runLog.recs[0]
	assert.Equal(t, "failed", rec.Status)
	assert.Contains(t, rec.Payload["error"], "connection reset")
}

func TestRefresh_ScrapingDisabledSkipsSources(t *testing.T) {
	cfg := testConfig()
	cfg.Scraper.Enabled = false

	store := &fakeStore{}
	runLog := &fakeRunLog{}

	// nil sources would panic if FetchAll were called
	svc := NewService(nil, store, runLog, cfg, testLogger(t))

	err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, store.saved)
}
