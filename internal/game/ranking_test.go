package game

import (
	"reflect"
	"testing"
	"time"

	"minigames/internal/model"
)

func wordSession(t *testing.T, players map[string]*model.WordPlayer) *model.GameSession {
	t.Helper()
	s := &model.GameSession{
		SessionHeader: model.SessionHeader{
			Mode:    model.ModeWord,
			Players: map[string]*model.Player{},
		},
		Word: &model.WordGameState{Word: "ocean", Players: players},
	}
	for id := range players {
		s.Players[id] = &model.Player{ID: id, Name: "n-" + id}
		s.TurnOrder = append(s.TurnOrder, id)
	}
	return s
}

func TestRankOrdering(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	early, late := base, base.Add(time.Minute)

	s := wordSession(t, map[string]*model.WordPlayer{
		// Same score, but b completed while d did not: b ranks above.
		"a": {Correct: []string{"o", "c", "e"}},
		"b": {Correct: []string{"o", "c"}, Won: true, WonAt: &late},
		"c": {Correct: []string{"o", "c"}, Won: true, WonAt: &early},
		"d": {Correct: []string{"o", "c"}},
	})

	got := Rank(s)
	wantOrder := []string{"a", "c", "b", "d"}
	for i, e := range got {
		if e.PlayerID != wantOrder[i] {
			t.Fatalf("position %d = %s, want %s (full: %+v)", i, e.PlayerID, wantOrder[i], got)
		}
	}
	wantRanks := []int{1, 2, 3, 4}
	for i, e := range got {
		if e.Rank != wantRanks[i] {
			t.Fatalf("rank[%d] = %d, want %d", i, e.Rank, wantRanks[i])
		}
	}
}

func TestRankTiesShareRank(t *testing.T) {
	s := wordSession(t, map[string]*model.WordPlayer{
		"a": {Correct: []string{"o", "c"}},
		"b": {Correct: []string{"o", "c"}},
		"c": {Correct: []string{"o"}},
	})
	s.TurnOrder = []string{"c", "b", "a"}

	got := Rank(s)
	if got[0].Rank != 1 || got[1].Rank != 1 {
		t.Fatalf("tied players should share rank 1: %+v", got)
	}
	// Next distinct player takes the 1-based position, not rank 2.
	if got[2].PlayerID != "c" || got[2].Rank != 3 {
		t.Fatalf("player after a tie = %+v, want c at rank 3", got[2])
	}
	// Exact ties fall back to name then ID: a before b.
	if got[0].PlayerID != "a" || got[1].PlayerID != "b" {
		t.Fatalf("tie-break order = %s,%s, want a,b", got[0].PlayerID, got[1].PlayerID)
	}
}

func TestRankDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := wordSession(t, map[string]*model.WordPlayer{
		"a": {Correct: []string{"o"}},
		"b": {Correct: []string{"o"}, Won: true, WonAt: &now},
		"c": {},
		"d": {Correct: []string{"o", "c", "e"}},
	})

	first := Rank(s)
	for i := 0; i < 10; i++ {
		if again := Rank(s); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestRankNumberGame(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ns := newNumberState(t)
	for {
		if _, err := DrawNext(ns); err != nil {
			break
		}
	}
	for _, n := range ns.Players["p2"].Ticket.Numbers() {
		if err := MarkNumber(ns, "p2", n); err != nil {
			t.Fatalf("mark %d: %v", n, err)
		}
	}
	if err := Call(ns, "p2", now); err != nil {
		t.Fatalf("call: %v", err)
	}

	s := &model.GameSession{
		SessionHeader: model.SessionHeader{
			Mode: model.ModeNumbers,
			Players: map[string]*model.Player{
				"p1": {ID: "p1", Name: "Ada", JoinedAt: now},
				"p2": {ID: "p2", Name: "Bo", JoinedAt: now.Add(time.Second)},
			},
		},
		Numbers: ns,
	}

	got := Rank(s)
	if got[0].PlayerID != "p2" || got[0].Rank != 1 || got[0].Score != 15 {
		t.Fatalf("leader = %+v, want p2 rank 1 score 15", got[0])
	}
	if got[1].PlayerID != "p1" || got[1].Score != 0 {
		t.Fatalf("runner-up = %+v, want p1 score 0", got[1])
	}
}
