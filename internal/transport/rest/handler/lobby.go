package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"minigames/internal/model"
	"minigames/internal/service"
	"minigames/internal/transport/rest/middleware"
)

// LobbyHandler handles lobby endpoints
type LobbyHandler struct {
	sessions *service.SessionService
	authSvc  *service.AuthService
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(sessions *service.SessionService, authSvc *service.AuthService) *LobbyHandler {
	return &LobbyHandler{
		sessions: sessions,
		authSvc:  authSvc,
	}
}

// Join handles POST /v1/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Nickname) == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	playerID, err := h.sessions.Join(r.Context(), code, req.Nickname, req.Avatar)
	if err != nil {
		if errors.Is(err, service.ErrLobbyFull) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.GeneratePlayerToken(code, playerID, req.Nickname)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, &model.JoinResponse{
		PlayerID:  playerID,
		LobbyCode: code,
		Token:     token,
	})
}

// Close handles DELETE /v1/lobbies/{code}. Operator cleanup: drops the
// session and every timer it owns. Requires a host token.
func (h *LobbyHandler) Close(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	if _, err := h.sessions.Snapshot(r.Context(), code); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.sessions.Delete(r.Context(), code); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"lobbyCode": code,
		"closedBy":  middleware.HostID(r.Context()),
	})
}

// Get handles GET /v1/lobbies/{code} — the shared view only; private
// state is only delivered over the player's own connection.
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	view, err := h.sessions.Snapshot(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}
