package model

import (
	"sort"
	"time"
)

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseCountdown Phase = "countdown"
	PhaseActive    Phase = "active"
	PhaseEnded     Phase = "ended"
)

type GameMode string

const (
	ModeWord    GameMode = "word"
	ModeNumbers GameMode = "numbers"
)

type DrawMode string

const (
	DrawAuto   DrawMode = "auto"
	DrawManual DrawMode = "manual"
)

// Player is the identity/presence part of a session participant. Game
// progress lives in the per-mode state structs keyed by player ID.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// SessionHeader holds the fields common to both game modes.
type SessionHeader struct {
	LobbyCode       string             `json:"lobbyCode"`
	GameID          string             `json:"gameId"`
	Mode            GameMode           `json:"mode"`
	Phase           Phase              `json:"phase"`
	HostID          string             `json:"hostId"`
	HostPlays       bool               `json:"hostPlays"`
	Players         map[string]*Player `json:"players"`
	TurnOrder       []string           `json:"turnOrder,omitempty"`
	CurrentPlayerID string             `json:"currentPlayerId,omitempty"`
	TurnStartedAt   time.Time          `json:"turnStartedAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	StartedAt       time.Time          `json:"startedAt,omitempty"`
	EndedAt         *time.Time         `json:"endedAt,omitempty"`
	EndReason       string             `json:"endReason,omitempty"`
	Rankings        []RankEntry        `json:"rankings,omitempty"`

	// Version guards the read-modify-write cycle against the store; it is
	// bumped on every successful save and checked before overwrite.
	Version int64 `json:"version"`
}

// GameSession is one lobby's current game. Exactly one of Word/Numbers is
// non-nil once a mode is chosen.
type GameSession struct {
	SessionHeader
	Word    *WordGameState   `json:"word,omitempty"`
	Numbers *NumberGameState `json:"numbers,omitempty"`
}

// WordPlayer tracks one player's progress in the word-guessing game.
type WordPlayer struct {
	Correct      []string   `json:"correct"`
	Wrong        []string   `json:"wrong"`
	AttemptsLeft int        `json:"attemptsLeft"`
	Eliminated   bool       `json:"eliminated"`
	Won          bool       `json:"won"`
	WonAt        *time.Time `json:"wonAt,omitempty"`
}

type WordGameState struct {
	Word     string                 `json:"word"`
	Category string                 `json:"category,omitempty"`
	Players  map[string]*WordPlayer `json:"players"`
}

// NumberPlayer tracks one player's ticket and marks. The ticket layout is
// fixed at generation time; only Marked changes.
type NumberPlayer struct {
	Ticket      *Ticket    `json:"ticket"`
	Marked      []int      `json:"marked"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type NumberGameState struct {
	Pool     []int                    `json:"pool"`
	Drawn    []int                    `json:"drawn"`
	Active   []int                    `json:"active,omitempty"`
	DrawMode DrawMode                 `json:"drawMode"`
	DrawerID string                   `json:"drawerId,omitempty"`
	Players  map[string]*NumberPlayer `json:"players"`
}

// IsParticipant reports whether the player takes part in the game itself
// (a non-playing host is in Players but never a participant).
func (s *GameSession) IsParticipant(playerID string) bool {
	if _, ok := s.Players[playerID]; !ok {
		return false
	}
	if playerID == s.HostID && !s.HostPlays {
		return false
	}
	return true
}

// ParticipantIDs returns participating player IDs sorted by join time.
func (s *GameSession) ParticipantIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		if s.IsParticipant(id) {
			ids = append(ids, id)
		}
	}
	sortByJoin(ids, s.Players)
	return ids
}

// RemovePlayer drops a player from the roster, the turn rotation and the
// per-mode progress maps in one step.
func (s *GameSession) RemovePlayer(playerID string) {
	delete(s.Players, playerID)
	for i, id := range s.TurnOrder {
		if id == playerID {
			s.TurnOrder = append(s.TurnOrder[:i], s.TurnOrder[i+1:]...)
			break
		}
	}
	if s.Word != nil {
		delete(s.Word.Players, playerID)
	}
	if s.Numbers != nil {
		delete(s.Numbers.Players, playerID)
	}
	if s.CurrentPlayerID == playerID {
		s.CurrentPlayerID = ""
	}
}

func sortByJoin(ids []string, players map[string]*Player) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := players[ids[i]], players[ids[j]]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}
