package game

import (
	"errors"
	"math/rand"
	"time"

	"minigames/internal/model"
)

// PoolSize is the full draw range: numbers 1..90.
const PoolSize = 90

var (
	ErrNotOnTicket   = errors.New("game: number is not on your ticket")
	ErrNotDrawn      = errors.New("game: number has not been drawn")
	ErrAlreadyMarked = errors.New("game: number already marked")
	ErrNotComplete   = errors.New("game: ticket is not complete")
	ErrPoolEmpty     = errors.New("game: draw pool is empty")
)

// NewNumberState builds number-game state: one generated ticket per
// participant and a shuffled 1..90 draw pool.
func NewNumberState(rng *rand.Rand, drawMode model.DrawMode, drawerID string, participants []string) (*model.NumberGameState, error) {
	ns := &model.NumberGameState{
		Pool:     ShuffledPool(rng),
		Drawn:    []int{},
		Active:   []int{},
		DrawMode: drawMode,
		DrawerID: drawerID,
		Players:  make(map[string]*model.NumberPlayer, len(participants)),
	}
	for _, id := range participants {
		t, err := GenerateTicket(rng)
		if err != nil {
			return nil, err
		}
		ns.Players[id] = &model.NumberPlayer{Ticket: t, Marked: []int{}}
	}
	return ns, nil
}

// ShuffledPool returns the numbers 1..PoolSize in random order.
func ShuffledPool(rng *rand.Rand) []int {
	pool := make([]int, PoolSize)
	for i := range pool {
		pool[i] = i + 1
	}
	rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
	return pool
}

// DrawNext pops the next number off the pool into drawn and active.
func DrawNext(ns *model.NumberGameState) (int, error) {
	if len(ns.Pool) == 0 {
		return 0, ErrPoolEmpty
	}
	n := ns.Pool[0]
	ns.Pool = ns.Pool[1:]
	ns.Drawn = append(ns.Drawn, n)
	ns.Active = append(ns.Active, n)
	return n, nil
}

// ClearActive drops n from the just-called set; it stays in drawn.
func ClearActive(ns *model.NumberGameState, n int) {
	for i, v := range ns.Active {
		if v == n {
			ns.Active = append(ns.Active[:i], ns.Active[i+1:]...)
			return
		}
	}
}

// MarkNumber records a player marking a number. The number must be on the
// player's ticket, already drawn, and not marked yet.
func MarkNumber(ns *model.NumberGameState, playerID string, n int) error {
	p := ns.Players[playerID]
	if p == nil {
		return ErrNotPlaying
	}
	if !p.Ticket.Has(n) {
		return ErrNotOnTicket
	}
	if !drawn(ns, n) {
		return ErrNotDrawn
	}
	for _, m := range p.Marked {
		if m == n {
			return ErrAlreadyMarked
		}
	}
	p.Marked = append(p.Marked, n)
	return nil
}

// Call claims a completed ticket, stamping the completion time. Every
// ticket number must be marked.
func Call(ns *model.NumberGameState, playerID string, now time.Time) error {
	p := ns.Players[playerID]
	if p == nil {
		return ErrNotPlaying
	}
	if p.CompletedAt != nil {
		return ErrAlreadyMarked
	}
	if !TicketComplete(ns, playerID) {
		return ErrNotComplete
	}
	t := now
	p.CompletedAt = &t
	return nil
}

// TicketComplete reports whether every number on the ticket is marked.
func TicketComplete(ns *model.NumberGameState, playerID string) bool {
	p := ns.Players[playerID]
	if p == nil {
		return false
	}
	marked := make(map[int]bool, len(p.Marked))
	for _, m := range p.Marked {
		marked[m] = true
	}
	for _, n := range p.Ticket.Numbers() {
		if !marked[n] {
			return false
		}
	}
	return true
}

// AllComplete reports whether every participant has called a full ticket.
func AllComplete(ns *model.NumberGameState) bool {
	if len(ns.Players) == 0 {
		return false
	}
	for _, p := range ns.Players {
		if p.CompletedAt == nil {
			return false
		}
	}
	return true
}

// NumberScore counts marks that are both on the ticket and drawn.
func NumberScore(ns *model.NumberGameState, playerID string) int {
	p := ns.Players[playerID]
	if p == nil {
		return 0
	}
	score := 0
	for _, m := range p.Marked {
		if p.Ticket.Has(m) && drawn(ns, m) {
			score++
		}
	}
	return score
}

func drawn(ns *model.NumberGameState, n int) bool {
	for _, d := range ns.Drawn {
		if d == n {
			return true
		}
	}
	return false
}
