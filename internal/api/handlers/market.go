package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/internal/contracts"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

// MarketHandler serves the market-hours endpoints.
type MarketHandler struct {
	engine *calendar.Engine
	runLog contracts.RunLog
	cache  *redis.Cache
	logger *logger.Logger
}

// NewMarketHandler creates a new market hours handler.
func NewMarketHandler(engine *calendar.Engine, runLog contracts.RunLog, cache *redis.Cache, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		engine: engine,
		runLog: runLog,
		cache:  cache,
		logger: log,
	}
}

// marketHoursResponse adds the resolved date to the wire shape.
type marketHoursResponse struct {
	Date string `json:"date"`
	contracts.ResolvedHours
}

func toHoursResponse(h *contracts.ResolvedHours) marketHoursResponse {
	return marketHoursResponse{
		Date:          contracts.FormatDate(h.Date),
		ResolvedHours: *h,
	}
}

// weekScheduleResponse is the wire shape of a 7-day schedule.
type weekScheduleResponse struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Days      []marketHoursResponse `json:"days"`
}

// nextEventResponse adds the event date to the wire shape.
type nextEventResponse struct {
	NextDate string `json:"next_date"`
	contracts.NextEvent
}

// Today returns market hours for the current UTC date.
// GET /api/market-hours/today
func (h *MarketHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()
	today := contracts.NormalizeDate(now)

	cacheKey := redis.HoursKey(contracts.FormatDate(today))
	var cached marketHoursResponse
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	hours, err := h.engine.Resolve(ctx, today, now)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve today's market hours")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := toHoursResponse(hours)
	if err := h.cache.Set(ctx, cacheKey, resp, redis.TTLStatus); err != nil {
		h.logger.WithError(err).Debug("Cache write failed")
	}

	respondJSON(w, http.StatusOK, resp)
}

// ByDate returns market hours for a specific date.
// GET /api/market-hours/date/{date}
func (h *MarketHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := calendar.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	hours, err := h.engine.Resolve(ctx, target, time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve market hours")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toHoursResponse(hours))
}

// Week returns a 7-day schedule starting at start_date (default today).
// GET /api/market-hours/week?start_date=YYYY-MM-DD
func (h *MarketHandler) Week(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	var start time.Time
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		var err error
		start, err = calendar.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
	}

	cacheKey := ""
	if !start.IsZero() {
		cacheKey = redis.WeekKey(contracts.FormatDate(start))
		var cached weekScheduleResponse
		if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	schedule, err := h.engine.WeekSchedule(ctx, start, now)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build week schedule")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := weekScheduleResponse{
		StartDate: contracts.FormatDate(schedule.StartDate),
		EndDate:   contracts.FormatDate(schedule.EndDate),
		Days:      make([]marketHoursResponse, 0, len(schedule.Days)),
	}
	for i := range schedule.Days {
		resp.Days = append(resp.Days, toHoursResponse(&schedule.Days[i]))
	}

	if cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, resp, redis.TTLSchedule); err != nil {
			h.logger.WithError(err).Debug("Cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Next returns the next market open or close event.
// GET /api/market-hours/next
func (h *MarketHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, err := h.engine.NextEvent(ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, calendar.ErrNoUpcomingEvent) {
			respondError(w, http.StatusNotFound, "No upcoming market events found in next 30 days")
			return
		}
		h.logger.WithError(err).Error("Failed to find next market event")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, nextEventResponse{
		NextDate:  contracts.FormatDate(event.NextDate),
		NextEvent: *event,
	})
}

// IsOpen reports whether the market is open right now.
// GET /api/market-hours/is-open
func (h *MarketHandler) IsOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	open, message, err := h.engine.IsOpenNow(ctx, now)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check market status")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"is_open":   open,
		"message":   message,
		"timestamp": now.Format(time.RFC3339),
	})
}

// Raw returns the last calendar refresh run.
// GET /api/market-hours/raw
func (h *MarketHandler) Raw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.runLog.GetLast(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read run log")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if rec == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "No refresh data available yet",
			"data":    nil,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"last_updated": rec.RunAt.Format(time.RFC3339),
		"status":       rec.Status,
		"source":       rec.Source,
		"data":         rec.Payload,
	})
}
