package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"borderland-arena/internal/domain"
	"borderland-arena/internal/middleware"
	"borderland-arena/internal/realtime"
	"borderland-arena/internal/service"
	"borderland-arena/pkg/errors"
	"borderland-arena/pkg/logger"
	"borderland-arena/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	defaultPingInterval = 30 * time.Second
	wsWriteWait         = 10 * time.Second
)

// EventSource opens per-game event subscriptions
type EventSource interface {
	Subscribe(gameID, teamID string) *realtime.Subscription
	Unsubscribe(sub *realtime.Subscription)
}

// EventsHandler streams a game's events over SSE and WebSocket
type EventsHandler struct {
	source       EventSource
	admin        service.AdminService
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	logger       *logger.Logger
}

// NewEventsHandler creates an events handler. WebSocket upgrades are accepted
// from allowedOrigins only; "*" allows any origin.
func NewEventsHandler(source EventSource, admin service.AdminService, allowedOrigins []string, logger *logger.Logger) *EventsHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &EventsHandler{
		source: source,
		admin:  admin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		pingInterval: defaultPingInterval,
		logger:       logger,
	}
}

// TeamStream handles GET /api/play/events
func (h *EventsHandler) TeamStream(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewAuthenticationError("Session required"), h.logger)
		return
	}
	h.serveSSE(w, r, session.GameID, session.TeamID)
}

// AdminStream handles GET /api/admin/games/{gameID}/events
func (h *EventsHandler) AdminStream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if _, err := h.admin.GetGame(r.Context(), gameID); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	h.serveSSE(w, r, gameID, "")
}

func (h *EventsHandler) serveSSE(w http.ResponseWriter, r *http.Request, gameID, teamID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, errors.NewInternalError("Streaming unsupported", nil), h.logger)
		return
	}

	sub := h.source.Subscribe(gameID, teamID)
	defer h.source.Unsubscribe(sub)

	metrics.ActiveStreams.WithLabelValues("sse").Inc()
	defer metrics.ActiveStreams.WithLabelValues("sse").Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	log := h.logger.WithFields(map[string]interface{}{
		"game_id": gameID,
		"team_id": teamID,
	})
	log.Debug("Event stream opened")
	defer log.Debug("Event stream closed")

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-sub.C:
			if !ok {
				// the game was deleted
				return
			}
			if err := writeSSE(w, evt); err != nil {
				log.WithError(err).Debug("Event stream write failed")
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// TeamSocket handles GET /api/play/ws
func (h *EventsHandler) TeamSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewAuthenticationError("Session required"), h.logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.source.Subscribe(session.GameID, session.TeamID)
	defer h.source.Unsubscribe(sub)

	metrics.ActiveStreams.WithLabelValues("websocket").Inc()
	defer metrics.ActiveStreams.WithLabelValues("websocket").Dec()

	// Clients only send control frames; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game deleted"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

var _ EventSource = (*realtime.Hub)(nil)

// writeSSE frames evt as a named server-sent event
func writeSSE(w io.Writer, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
