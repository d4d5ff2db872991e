package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one player's WebSocket connection
type Connection struct {
	LobbyCode string
	PlayerID  string
	Send      chan []byte
}

// Hub maps lobby and player IDs to live connections. It implements the
// engine's Transport contract; connections are looked up just-in-time on
// every send and are never persisted anywhere else.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]*Connection // lobbyCode -> playerID -> conn
	log   zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[string]*Connection),
		log:   log,
	}
}

// Register adds a connection, replacing any previous connection for the
// same player (reconnect).
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn.LobbyCode] == nil {
		h.conns[conn.LobbyCode] = make(map[string]*Connection)
	}
	if old, ok := h.conns[conn.LobbyCode][conn.PlayerID]; ok && old != conn {
		close(old.Send)
	}
	h.conns[conn.LobbyCode][conn.PlayerID] = conn
	h.log.Debug().Str("lobby", conn.LobbyCode).Str("player", conn.PlayerID).Msg("connected")
}

// Unregister removes a connection if it is still the current one.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if players, ok := h.conns[conn.LobbyCode]; ok {
		if existing, ok := players[conn.PlayerID]; ok && existing == conn {
			delete(players, conn.PlayerID)
			close(conn.Send)
			if len(players) == 0 {
				delete(h.conns, conn.LobbyCode)
			}
			h.log.Debug().Str("lobby", conn.LobbyCode).Str("player", conn.PlayerID).Msg("disconnected")
		}
	}
}

// Send delivers one message to one player. Delivery is best-effort: a
// full buffer or a missing connection drops the message.
func (h *Hub) Send(lobbyCode, playerID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("marshal payload")
		return
	}
	frame, _ := json.Marshal(&Message{Type: msgType, Payload: data})

	h.mu.RLock()
	defer h.mu.RUnlock()
	if players, ok := h.conns[lobbyCode]; ok {
		if conn, ok := players[playerID]; ok {
			select {
			case conn.Send <- frame:
			default:
				// Drop message if buffer full
			}
		}
	}
}

// IsConnected reports whether the player has a live connection.
func (h *Hub) IsConnected(lobbyCode, playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[lobbyCode][playerID]
	return ok
}

// Connected lists player IDs currently connected to a lobby.
func (h *Hub) Connected(lobbyCode string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.conns[lobbyCode]))
	for id := range h.conns[lobbyCode] {
		ids = append(ids, id)
	}
	return ids
}
