package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Dosada05/scoreboard/brackets"
)

type WebSocketHandler struct {
	hub      *brackets.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *brackets.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWs подключает зрителя к комнате.
// /ws?match=42 слушает один матч, без параметра - все события табло.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := brackets.ScoreboardRoom
	if raw := r.URL.Query().Get("match"); raw != "" {
		matchID, err := strconv.Atoi(raw)
		if err != nil || matchID <= 0 {
			http.Error(w, "Invalid match id", http.StatusBadRequest)
			return
		}
		room = brackets.MatchRoom(matchID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn().Err(err).Str("room", room).Msg("Failed to upgrade websocket connection")
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	if !h.hub.Join(client) {
		log.Debug().Str("room", room).Msg("Hub stopped, dropping spectator")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	log.Debug().Str("room", room).Str("remote", r.RemoteAddr).Msg("Spectator connected")
}
