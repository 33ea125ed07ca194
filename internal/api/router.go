package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/market-hours/internal/api/handlers"
	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

// Handlers bundles the route handlers wired into the router.
type Handlers struct {
	Market *handlers.MarketHandler
	News   *handlers.NewsHandler
	Docs   *handlers.DocsHandler
	Stream *handlers.StreamHandler
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h Handlers, cfg *config.Config, limiter *redis.RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Service info and health check (never authenticated or rate limited)
	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Market hours endpoints
	market := r.PathPrefix("/api/market-hours").Subrouter()
	market.HandleFunc("/today", h.Market.Today).Methods("GET")
	market.HandleFunc("/date/{date}", h.Market.ByDate).Methods("GET")
	market.HandleFunc("/week", h.Market.Week).Methods("GET")
	market.HandleFunc("/next", h.Market.Next).Methods("GET")
	market.HandleFunc("/is-open", h.Market.IsOpen).Methods("GET")
	market.HandleFunc("/raw", h.Market.Raw).Methods("GET")
	market.Use(apiKeyMiddleware(cfg))
	if cfg.API.RateLimitEnabled && limiter != nil {
		market.Use(rateLimitMiddleware(cfg, limiter, log))
	}

	// News aggregation (open, but rate limited with the rest)
	r.HandleFunc("/api/news", h.News.GetNews).Methods("GET")

	// Protected API documentation
	docs := r.PathPrefix("/documentation").Subrouter()
	docs.HandleFunc("/login", h.Docs.LoginPage).Methods("GET")
	docs.HandleFunc("/verify", h.Docs.Verify).Methods("POST")
	docs.HandleFunc("/logout", h.Docs.Logout).Methods("GET")
	docs.HandleFunc("", h.Docs.Documentation).Methods("GET")

	// Live status stream
	r.HandleFunc("/ws/status", h.Stream.Status).Methods("GET")

	// CORS preflight; corsMiddleware writes the headers
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Global middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware(cfg))

	return r
}

// rootHandler identifies the service
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service": "US Market Hours Calendar API",
		"version": "1.0.0",
		"status":  "operational",
	})
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"service":   "market-hours-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
