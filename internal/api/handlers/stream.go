package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/market-hours/internal/calendar"
	"github.com/wonny/market-hours/pkg/logger"
)

// statusInterval is how often the stream pushes a fresh status frame.
const statusInterval = 15 * time.Second

// StatusFrame is one pushed market-status update.
type StatusFrame struct {
	IsOpen    bool   `json:"is_open"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// StreamHandler pushes live market status over WebSocket.
type StreamHandler struct {
	engine   *calendar.Engine
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new status stream handler.
func NewStreamHandler(engine *calendar.Engine, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is handled by the CORS middleware upstream
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Status upgrades the connection and pushes a status frame immediately,
// then every statusInterval until the client disconnects.
// GET /ws/status
func (h *StreamHandler) Status(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Status stream connected")

	// Reader goroutine notices client close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		if err := h.pushStatus(conn, r); err != nil {
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// pushStatus writes one status frame.
func (h *StreamHandler) pushStatus(conn *websocket.Conn, r *http.Request) error {
	now := time.Now().UTC()

	open, message, err := h.engine.IsOpenNow(r.Context(), now)
	if err != nil {
		h.logger.WithError(err).Warn("Status resolution failed, closing stream")
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(StatusFrame{
		IsOpen:    open,
		Message:   message,
		Timestamp: now.Format(time.RFC3339),
	})
}
