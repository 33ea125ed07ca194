package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/wonny/market-hours/pkg/config"
	"github.com/wonny/market-hours/pkg/logger"
	"github.com/wonny/market-hours/pkg/redis"
)

const sessionCookie = "docs_session"

// DocsHandler serves the password-protected API documentation.
// Sessions live in Redis when available; the in-memory map keeps the
// docs usable when Redis is disabled or restarts mid-session.
type DocsHandler struct {
	cfg    *config.Config
	cache  *redis.Cache
	logger *logger.Logger

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

// NewDocsHandler creates a new documentation handler.
func NewDocsHandler(cfg *config.Config, cache *redis.Cache, log *logger.Logger) *DocsHandler {
	return &DocsHandler{
		cfg:      cfg,
		cache:    cache,
		logger:   log,
		sessions: make(map[string]time.Time),
	}
}

// newSessionToken returns a 64-char hex token.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// createSession registers a token in both stores.
func (h *DocsHandler) createSession(ctx context.Context, token string) {
	expiry := time.Now().Add(h.cfg.Docs.SessionTTL)

	h.mu.Lock()
	h.sessions[token] = expiry
	h.mu.Unlock()

	if err := h.cache.Set(ctx, redis.SessionKey(token), expiry, h.cfg.Docs.SessionTTL); err != nil {
		h.logger.WithError(err).Debug("Session cache write failed")
	}
}

// isAuthenticated checks the request's session cookie.
func (h *DocsHandler) isAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	token := cookie.Value

	var expiry time.Time
	if hit, err := h.cache.Get(r.Context(), redis.SessionKey(token), &expiry); err == nil && hit {
		return time.Now().Before(expiry)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	expiry, ok := h.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(h.sessions, token)
		return false
	}
	return true
}

// dropSession removes a token from both stores.
func (h *DocsHandler) dropSession(ctx context.Context, token string) {
	h.mu.Lock()
	delete(h.sessions, token)
	h.mu.Unlock()

	if err := h.cache.Delete(ctx, redis.SessionKey(token)); err != nil {
		h.logger.WithError(err).Debug("Session cache delete failed")
	}
}

// LoginPage renders the docs login form.
// GET /documentation/login
func (h *DocsHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, "/documentation", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("error") == "invalid" {
		w.WriteHeader(http.StatusUnauthorized)
	}
	w.Write([]byte(loginPageHTML))
}

// Verify checks the submitted password and issues a session cookie.
// POST /documentation/verify
func (h *DocsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	password := r.PostFormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Docs.Password)) != 1 {
		h.logger.WithField("remote", r.RemoteAddr).Warn("Docs login failed")
		http.Redirect(w, r, "/documentation/login?error=invalid", http.StatusFound)
		return
	}

	token, err := newSessionToken()
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate session token")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.createSession(r.Context(), token)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Docs.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/documentation", http.StatusFound)
}

// Logout drops the session and clears the cookie.
// GET /documentation/logout
func (h *DocsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.dropSession(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/documentation/login", http.StatusFound)
}

// Documentation renders the API reference for authenticated sessions.
// GET /documentation
func (h *DocsHandler) Documentation(w http.ResponseWriter, r *http.Request) {
	if !h.isAuthenticated(r) {
		http.Redirect(w, r, "/documentation/login", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(documentationHTML))
}
