package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"minigames/internal/model"
	"minigames/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Inbound action types.
const (
	actionStart       = "start"
	actionGuessLetter = "guess_letter"
	actionGuessWord   = "guess_word"
	actionMarkNumber  = "mark_number"
	actionDraw        = "draw"
	actionCall        = "call"
	actionEnd         = "end"
	actionLeave       = "leave"
)

// Handler authenticates upgrades and pumps messages between the socket
// and the session service.
type Handler struct {
	hub      *Hub
	sessions *service.SessionService
	authSvc  *service.AuthService
	log      zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, sessions *service.SessionService, authSvc *service.AuthService, log zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		authSvc:  authSvc,
		log:      log,
	}
}

// LobbyWS handles GET /v1/ws/lobbies/{code}
func (h *Handler) LobbyWS(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.LobbyCode != code {
		http.Error(w, "token not valid for this lobby", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade")
		return
	}

	conn := &Connection{
		LobbyCode: code,
		PlayerID:  claims.PlayerID,
		Send:      make(chan []byte, 256),
	}

	h.hub.Register(conn)
	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)

	if err := h.sessions.Connect(r.Context(), code, claims.PlayerID); err != nil {
		h.sendError(code, claims.PlayerID, err)
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("player", conn.PlayerID).Msg("websocket read")
			}
			break
		}
		h.dispatch(conn, data)
	}
}

// dispatch decodes one inbound action and routes it to the session
// service. Validation failures go back to the requester only.
func (h *Handler) dispatch(conn *Connection, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(conn.LobbyCode, conn.PlayerID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch msg.Type {
	case actionStart:
		var p struct {
			Mode      model.GameMode `json:"mode"`
			Word      string         `json:"word"`
			Category  string         `json:"category"`
			DrawMode  model.DrawMode `json:"drawMode"`
			DrawerID  string         `json:"drawerId"`
			HostPlays *bool          `json:"hostPlays"`
		}
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			hostPlays := true
			if p.HostPlays != nil {
				hostPlays = *p.HostPlays
			}
			err = h.sessions.Start(ctx, conn.LobbyCode, conn.PlayerID, service.StartOptions{
				Mode:      p.Mode,
				Word:      p.Word,
				Category:  p.Category,
				DrawMode:  p.DrawMode,
				DrawerID:  p.DrawerID,
				HostPlays: hostPlays,
			})
		}
	case actionGuessLetter:
		var p struct {
			Letter string `json:"letter"`
		}
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.sessions.GuessLetter(ctx, conn.LobbyCode, conn.PlayerID, p.Letter)
		}
	case actionGuessWord:
		var p struct {
			Word string `json:"word"`
		}
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.sessions.GuessWord(ctx, conn.LobbyCode, conn.PlayerID, p.Word)
		}
	case actionMarkNumber:
		var p struct {
			Number int `json:"number"`
		}
		if err = json.Unmarshal(msg.Payload, &p); err == nil {
			err = h.sessions.MarkNumber(ctx, conn.LobbyCode, conn.PlayerID, p.Number)
		}
	case actionDraw:
		err = h.sessions.Draw(ctx, conn.LobbyCode, conn.PlayerID)
	case actionCall:
		err = h.sessions.Call(ctx, conn.LobbyCode, conn.PlayerID)
	case actionEnd:
		err = h.sessions.End(ctx, conn.LobbyCode, conn.PlayerID)
	case actionLeave:
		err = h.sessions.Leave(ctx, conn.LobbyCode, conn.PlayerID)
	default:
		h.log.Debug().Str("type", msg.Type).Msg("unknown action")
		return
	}

	if err != nil {
		h.sendError(conn.LobbyCode, conn.PlayerID, err)
	}
}

func (h *Handler) sendError(lobbyCode, playerID string, err error) {
	h.hub.Send(lobbyCode, playerID, service.EventError, map[string]interface{}{
		"message": err.Error(),
	})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
