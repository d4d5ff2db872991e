package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"minigames/internal/repository"
)

// StatsHandler serves finished-game records
type StatsHandler struct {
	stats repository.StatsRepo
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats repository.StatsRepo) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get handles GET /v1/games/{gameId}
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	record, err := h.stats.GetByGameID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// History handles GET /v1/lobbies/{code}/games
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	records, err := h.stats.ListByLobby(r.Context(), code, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"games": records})
}
