package service

import (
	"sort"
	"time"

	"minigames/internal/game"
	"minigames/internal/model"
)

// PlayerPublic is the per-player slice of the shared view: flags everyone
// may see, never another player's guesses or marks.
type PlayerPublic struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	IsHost     bool   `json:"isHost"`
	Spectating bool   `json:"spectating,omitempty"`
	Score      int    `json:"score"`
	Eliminated bool   `json:"eliminated,omitempty"`
	Won        bool   `json:"won,omitempty"`
	Completed  bool   `json:"completed,omitempty"`
}

// SharedView is identical for every recipient of an event.
type SharedView struct {
	LobbyCode       string            `json:"lobbyCode"`
	GameID          string            `json:"gameId,omitempty"`
	Mode            model.GameMode    `json:"mode,omitempty"`
	Phase           model.Phase       `json:"phase"`
	Players         []PlayerPublic    `json:"players"`
	CurrentPlayerID string            `json:"currentPlayerId,omitempty"`
	TurnEndsAt      *time.Time        `json:"turnEndsAt,omitempty"`
	Category        string            `json:"category,omitempty"`
	MaskedWord      string            `json:"maskedWord,omitempty"`
	Drawn           []int             `json:"drawn,omitempty"`
	Active          []int             `json:"active,omitempty"`
	Remaining       int               `json:"remaining,omitempty"`
	DrawMode        model.DrawMode    `json:"drawMode,omitempty"`
	DrawerID        string            `json:"drawerId,omitempty"`
	Standings       []model.RankEntry `json:"standings,omitempty"`
	EndReason       string            `json:"endReason,omitempty"`
}

// PrivateView is the recipient's own progress; never sent to anyone else.
type PrivateView struct {
	PlayerID     string        `json:"playerId"`
	YourTurn     bool          `json:"yourTurn"`
	Correct      []string      `json:"correct,omitempty"`
	Wrong        []string      `json:"wrong,omitempty"`
	AttemptsLeft int           `json:"attemptsLeft,omitempty"`
	Eliminated   bool          `json:"eliminated,omitempty"`
	Won          bool          `json:"won,omitempty"`
	Ticket       *model.Ticket `json:"ticket,omitempty"`
	Marked       []int         `json:"marked,omitempty"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// buildSharedView assembles the recipient-independent state snapshot.
func buildSharedView(s *model.GameSession, turnDuration time.Duration) SharedView {
	v := SharedView{
		LobbyCode:       s.LobbyCode,
		GameID:          s.GameID,
		Mode:            s.Mode,
		Phase:           s.Phase,
		CurrentPlayerID: s.CurrentPlayerID,
		EndReason:       s.EndReason,
	}

	if s.CurrentPlayerID != "" && !s.TurnStartedAt.IsZero() {
		ends := s.TurnStartedAt.Add(turnDuration)
		v.TurnEndsAt = &ends
	}

	if s.Word != nil {
		v.Category = s.Word.Category
		v.MaskedWord = game.MaskedWord(s.Word)
	}
	if s.Numbers != nil {
		v.Drawn = s.Numbers.Drawn
		v.Active = s.Numbers.Active
		v.Remaining = len(s.Numbers.Pool)
		v.DrawMode = s.Numbers.DrawMode
		v.DrawerID = s.Numbers.DrawerID
	}

	for _, id := range viewOrder(s) {
		p := s.Players[id]
		pub := PlayerPublic{
			ID:         p.ID,
			Name:       p.Name,
			Avatar:     p.Avatar,
			IsHost:     id == s.HostID,
			Spectating: !s.IsParticipant(id),
		}
		if s.Word != nil {
			if wp := s.Word.Players[id]; wp != nil {
				pub.Score = game.WordScore(s.Word, id)
				pub.Eliminated = wp.Eliminated
				pub.Won = wp.Won
			}
		}
		if s.Numbers != nil {
			if np := s.Numbers.Players[id]; np != nil {
				pub.Score = game.NumberScore(s.Numbers, id)
				pub.Completed = np.CompletedAt != nil
			}
		}
		v.Players = append(v.Players, pub)
	}

	switch s.Phase {
	case model.PhaseEnded:
		v.Standings = s.Rankings
	case model.PhaseActive:
		v.Standings = game.Rank(s)
	}
	return v
}

// buildPrivateView assembles one player's own slice of the state, or nil
// for spectators and unknown players.
func buildPrivateView(s *model.GameSession, playerID string) *PrivateView {
	if !s.IsParticipant(playerID) {
		return nil
	}
	v := &PrivateView{
		PlayerID: playerID,
		YourTurn: s.Phase == model.PhaseActive && s.CurrentPlayerID == playerID,
	}
	if s.Word != nil {
		if wp := s.Word.Players[playerID]; wp != nil {
			v.Correct = wp.Correct
			v.Wrong = wp.Wrong
			v.AttemptsLeft = wp.AttemptsLeft
			v.Eliminated = wp.Eliminated
			v.Won = wp.Won
		}
	}
	if s.Numbers != nil {
		if np := s.Numbers.Players[playerID]; np != nil {
			v.Ticket = np.Ticket
			v.Marked = np.Marked
			v.CompletedAt = np.CompletedAt
		}
	}
	return v
}

// viewOrder lists roster IDs: turn order first when one exists, everyone
// else (non-playing host, numbers mode) by join time.
func viewOrder(s *model.GameSession) []string {
	seen := make(map[string]bool, len(s.Players))
	order := make([]string, 0, len(s.Players))
	for _, id := range s.TurnOrder {
		if _, ok := s.Players[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	rest := make([]string, 0, len(s.Players))
	for id := range s.Players {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sortRest(rest, s.Players)
	return append(order, rest...)
}

func sortRest(ids []string, players map[string]*model.Player) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := players[ids[i]], players[ids[j]]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}
