package game

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lexiquest/internal/auth"
	httperrors "lexiquest/pkg/http/errors"
	"lexiquest/pkg/http/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The event stream carries no answers, only public game events.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler streams session events to subscribed clients.
type WSHandler struct {
	hub    *ws.Hub
	tokens *auth.Manager
	logger zerolog.Logger
}

// NewWSHandler creates the WebSocket subscription handler.
func NewWSHandler(hub *ws.Hub, tokens *auth.Manager, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		logger: logger.With().Str("component", "game_ws").Logger(),
	}
}

// HandleWebSocket upgrades GET /ws/sessions?token=... and attaches the client
// to its session's event stream until the peer disconnects.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	sessionID := claims.SessionID
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Subscribe(sessionID, wsConn)

	go wsConn.WritePump()
	go wsConn.ReadPump(func() {
		h.hub.Unsubscribe(sessionID, wsConn)
	})
}
