package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/athletics-meet/notify"
	"github.com/Dosada05/athletics-meet/services"
)

type WebSocketHandler struct {
	hub          *notify.Hub
	eventService services.EventService
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewWebSocketHandler: allowedOrigins пустой или содержит "*" - разрешены все источники.
func NewWebSocketHandler(hub *notify.Hub, es services.EventService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{hub: hub, eventService: es, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWs подписывает клиента на уведомления события: /ws/events/{eventID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Комнаты создаются только для существующих событий.
	if _, err := h.eventService.GetEvent(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправил HTTP ошибку клиенту
		h.logger.Warn("websocket upgrade failed", slog.Int("event_id", eventID), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, eventID)
	h.logger.Debug("websocket client attached", slog.Int("event_id", eventID))
}
