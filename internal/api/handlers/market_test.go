package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	cfg := &config.Config{LogLevel: "error", LogFormat: "json"}
	return logger.New(cfg)
}

func disabledCache(t *testing.T) *redis.Cache {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	return redis.NewCache(client, "test")
}

// memStore is an in-memory CalendarStore.
type memStore struct {
	days map[string]*contracts.TradingDay
	err  error
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
	return s.days[contracts.FormatDate(contracts.NormalizeDate(date))], nil
}

func (s *memStore) GetRange(ctx context.Context, start, end time.Time) ([]*contracts.TradingDay, error) {
	return nil, nil
}

func (s *memStore) SaveBatch(ctx context.Context, days []*contracts.TradingDay) error {
	return nil
}

// memRunLog is an in-memory RunLog.
type memRunLog struct {
	last *contracts.RunRecord
	err  error
}

func (l *memRunLog) Save(ctx context.Context, rec *contracts.RunRecord) error {
	l.last = rec
	return nil
}

func (l *memRunLog) GetLast(ctx context.Context) (*contracts.RunRecord, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.last, nil
}

func newTestHandler(t *testing.T, store contracts.CalendarStore, runLog contracts.RunLog) *MarketHandler {
	t.Helper()
	log := testLogger(t)
	engine := calendar.NewEngine(store, log)
	return NewMarketHandler(engine, runLog, disabledCache(t), log)
}

// testRouter mounts the handler the same way the real router does.
func testRouter(h *MarketHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/market-hours/today", h.Today).Methods("GET")
	r.HandleFunc("/api/market-hours/date/{date}", h.ByDate).Methods("GET")
	r.HandleFunc("/api/market-hours/week", h.Week).Methods("GET")
	r.HandleFunc("/api/market-hours/next", h.Next).Methods("GET")
	r.HandleFunc("/api/market-hours/is-open", h.IsOpen).Methods("GET")
	r.HandleFunc("/api/market-hours/raw", h.Raw).Methods("GET")
	return r
}

func doRequest(t *testing.T, router *mux.Router, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestByDate_Holiday(t *testing.T) {
	store := newMemStore(&contracts.TradingDay{
		Date:        time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		IsOpen:      false,
		HolidayName: "Independence Day",
		Notes:       "Market closed for Independence Day",
	})
	router := testRouter(newTestHandler(t, store, &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/date/2025-07-04")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-07-04", body["date"])
	assert.Equal(t, false, body["is_open"])
	assert.Equal(t, "CLOSED", body["status"])
	assert.Equal(t, "Market closed for Independence Day", body["notes"])
	assert.Nil(t, body["open_time_utc"])
}

func TestByDate_RegularDay(t *testing.T) {
	store := newMemStore(&contracts.TradingDay{
		Date:        time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
		OpenTimeET:  contracts.RegularOpenET,
		CloseTimeET: contracts.RegularCloseET,
		IsOpen:      true,
		Notes:       "Regular trading hours",
	})
	router := testRouter(newTestHandler(t, store, &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/date/2025-07-07")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["is_open"])
	// 09:30 ET is 13:30 UTC during EDT
	assert.Equal(t, "2025-07-07T13:30:00Z", body["open_time_utc"])
	assert.Equal(t, "2025-07-07T20:00:00Z", body["close_time_utc"])
}

func TestByDate_InvalidDate(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/date/07-04-2025")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Invalid date format")
}

func TestByDate_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	router := testRouter(newTestHandler(t, store, &memRunLog{}))

	rec, _ := doRequest(t, router, "/api/market-hours/date/2025-07-07")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestToday_ResolvesCurrentDate(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/today")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contracts.FormatDate(time.Now().UTC()), body["date"])
	assert.Contains(t, []interface{}{"OPEN", "CLOSED", "EARLY_CLOSE"}, body["status"])
}

func TestWeek_SevenDays(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/week?start_date=2025-11-24")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-11-24", body["start_date"])
	assert.Equal(t, "2025-11-30", body["end_date"])

	days, ok := body["days"].([]interface{})
	require.True(t, ok)
	assert.Len(t, days, 7)
}

func TestWeek_InvalidStartDate(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, _ := doRequest(t, router, "/api/market-hours/week?start_date=notadate")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNext_ReturnsUpcomingOpen(t *testing.T) {
	tomorrow := contracts.NormalizeDate(time.Now().UTC().AddDate(0, 0, 1))
	store := newMemStore(&contracts.TradingDay{
		Date:        tomorrow,
		OpenTimeET:  contracts.RegularOpenET,
		CloseTimeET: contracts.RegularCloseET,
		IsOpen:      true,
		Notes:       "Regular trading hours",
	})
	router := testRouter(newTestHandler(t, store, &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/next")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, []interface{}{"open", "close"}, body["event_type"])
	assert.NotEmpty(t, body["next_date"])
	assert.GreaterOrEqual(t, body["time_until_seconds"].(float64), float64(0))
}

func TestNext_NothingUpcoming(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/next")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body["error"], "No upcoming market events")
}

func TestIsOpen_NoRecord(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/is-open")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["is_open"])
	assert.Equal(t, "Market closed", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRaw_Empty(t *testing.T) {
	router := testRouter(newTestHandler(t, newMemStore(), &memRunLog{}))

	rec, body := doRequest(t, router, "/api/market-hours/raw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No refresh data available yet", body["message"])
	assert.Nil(t, body["data"])
}

func TestRaw_ReturnsLastRun(t *testing.T) {
	runLog := &memRunLog{last: &contracts.RunRecord{
		RunAt:   time.Date(2025, 8, 30, 8, 0, 0, 0, time.UTC),
		Status:  "success",
		Source:  "NYSE+NASDAQ+Fallback",
		Payload: map[string]interface{}{"days_generated": 761},
	}}
	router := testRouter(newTestHandler(t, newMemStore(), runLog))

	rec, body := doRequest(t, router, "/api/market-hours/raw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-08-30T08:00:00Z", body["last_updated"])
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "NYSE+NASDAQ+Fallback", body["source"])
}

func TestRaw_RunLogFailure(t *testing.T) {
	runLog := &memRunLog{err: errors.New("connection refused")}
	router := testRouter(newTestHandler(t, newMemStore(), runLog))

	rec, _ := doRequest(t, router, "/api/market-hours/raw")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
