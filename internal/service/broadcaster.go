package service

import (
	"time"

	"github.com/rs/zerolog"

	"minigames/internal/model"
)

// Outbound event types.
const (
	EventJoined           = "joined"
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventReconnected      = "reconnected"
	EventSpectatorState   = "spectator_state"
	EventCountdown        = "countdown"
	EventStarted          = "started"
	EventTurnChange       = "turn_change"
	EventGuessMade        = "guess_made"
	EventPlayerEliminated = "player_eliminated"
	EventPlayerTimeout    = "player_timeout"
	EventNumberDrawn      = "number_drawn"
	EventNumberCleared    = "number_cleared"
	EventNumberMarked     = "number_marked"
	EventCallSuccess      = "call_success"
	EventRoundCancelled   = "round_cancelled"
	EventGameOver         = "game_over"
	EventError            = "error"
)

// Transport delivers messages to live connections (the ConnectionRegistry
// contract, implemented by the ws hub). Handles are looked up per send
// and never persisted with the session.
type Transport interface {
	Send(lobbyCode, playerID string, msgType string, payload interface{})
	IsConnected(lobbyCode, playerID string) bool
	// Connected lists player IDs with a live connection to the lobby,
	// including viewers who are not on the session roster.
	Connected(lobbyCode string) []string
}

// EventPayload is the wire shape of every outbound event: the shared view
// for all recipients plus the recipient's own private view.
type EventPayload struct {
	Shared SharedView             `json:"shared"`
	You    *PrivateView           `json:"you,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// SessionBroadcaster builds per-recipient views and fans them out.
// Delivery is best-effort: disconnected players are skipped.
type SessionBroadcaster struct {
	transport    Transport
	turnDuration time.Duration
	log          zerolog.Logger
}

func NewSessionBroadcaster(transport Transport, turnDuration time.Duration, log zerolog.Logger) *SessionBroadcaster {
	return &SessionBroadcaster{
		transport:    transport,
		turnDuration: turnDuration,
		log:          log,
	}
}

// Broadcast sends event to every connected roster member with their own
// private view, and the shared view alone to connected spectators.
func (b *SessionBroadcaster) Broadcast(s *model.GameSession, event string, data map[string]interface{}) {
	shared := buildSharedView(s, b.turnDuration)

	for id := range s.Players {
		if !b.transport.IsConnected(s.LobbyCode, id) {
			continue
		}
		b.transport.Send(s.LobbyCode, id, event, &EventPayload{
			Shared: shared,
			You:    buildPrivateView(s, id),
			Data:   data,
		})
	}

	for _, id := range b.transport.Connected(s.LobbyCode) {
		if _, ok := s.Players[id]; ok {
			continue
		}
		b.transport.Send(s.LobbyCode, id, event, &EventPayload{Shared: shared, Data: data})
	}

	b.log.Debug().
		Str("lobby", s.LobbyCode).
		Str("event", event).
		Str("game_id", s.GameID).
		Msg("broadcast")
}

// SendTo delivers an event to a single recipient.
func (b *SessionBroadcaster) SendTo(s *model.GameSession, playerID, event string, data map[string]interface{}) {
	b.transport.Send(s.LobbyCode, playerID, event, &EventPayload{
		Shared: buildSharedView(s, b.turnDuration),
		You:    buildPrivateView(s, playerID),
		Data:   data,
	})
}

// SendError reports a validation failure to the requester only.
func (b *SessionBroadcaster) SendError(lobbyCode, playerID string, err error) {
	b.transport.Send(lobbyCode, playerID, EventError, map[string]interface{}{
		"message": err.Error(),
	})
}
