package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/eyecrackcodes/agentsummary/internal/config"
	"github.com/eyecrackcodes/agentsummary/internal/infrastructure"
	ws "github.com/eyecrackcodes/agentsummary/internal/websocket"
)

// WSHandler upgrades dashboard connections and hands them to the hub
type WSHandler struct {
	hub      *ws.Hub
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(hub *ws.Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *WSHandler {
	originAllowed := func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}

	return &WSHandler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originAllowed,
		},
		logger: logger.With(slog.String("component", "ws_handler")),
	}
}

// ServeHTTP handles GET /ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	ws.ServeWS(h.hub, conn, h.cfg, traceID, h.logger)
}
