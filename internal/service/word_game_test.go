package service

import (
	"context"
	"testing"

	"minigames/internal/game"
	"minigames/internal/model"
)

func TestGuessLetterRotatesTurn(t *testing.T) {
	svc, store, _, transport := newTestService(t)
	ctx := context.Background()
	transport.connect("AB12CD", "a")

	seedSession(t, store, activeWordSession("AB12CD", "ocean", "a", "b"))

	if err := svc.GuessLetter(ctx, "AB12CD", "b", "o"); err != ErrNotYourTurn {
		t.Fatalf("out-of-turn guess: got %v, want ErrNotYourTurn", err)
	}
	if err := svc.GuessLetter(ctx, "AB12CD", "a", "o"); err != nil {
		t.Fatalf("guess: %v", err)
	}

	s, _ := store.Load(ctx, "AB12CD")
	if s.CurrentPlayerID != "b" {
		t.Fatalf("current player = %s, want b", s.CurrentPlayerID)
	}
	msg := transport.lastOfType("a", EventGuessMade)
	if msg == nil {
		t.Fatal("no guess_made event")
	}
	payload := msg.Payload.(*EventPayload)
	if payload.Data["correct"] != true {
		t.Fatalf("guess data = %v", payload.Data)
	}
}

func TestGuessWordWinsGame(t *testing.T) {
	svc, store, stats, transport := newTestService(t)
	ctx := context.Background()
	transport.connect("AB12CD", "a")
	transport.connect("AB12CD", "b")

	seedSession(t, store, activeWordSession("AB12CD", "ocean", "a", "b"))

	if err := svc.GuessWord(ctx, "AB12CD", "a", "OCEAN"); err != nil {
		t.Fatalf("winning guess: %v", err)
	}

	s, _ := store.Load(ctx, "AB12CD")
	if s.Phase != model.PhaseEnded || s.EndReason != ReasonWordGuessed {
		t.Fatalf("phase=%s reason=%s", s.Phase, s.EndReason)
	}
	if !s.Word.Players["a"].Won || s.Word.Players["b"].Won {
		t.Fatal("only the guesser should win")
	}

	rec := stats.records[s.GameID]
	if rec == nil {
		t.Fatal("no stats record")
	}
	if rec.Answer != "ocean" || len(rec.Winners) != 1 || rec.Winners[0] != "a" {
		t.Fatalf("record = %+v", rec)
	}
	if transport.lastOfType("b", EventGameOver) == nil {
		t.Fatal("loser never heard game_over")
	}
}

func TestGuessWordMissCostsAttempt(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	seedSession(t, store, activeWordSession("AB12CD", "ocean", "a", "b"))

	if err := svc.GuessWord(ctx, "AB12CD", "a", "whale"); err != nil {
		t.Fatalf("missed guess: %v", err)
	}

	s, _ := store.Load(ctx, "AB12CD")
	if s.Phase != model.PhaseActive {
		t.Fatalf("phase = %s", s.Phase)
	}
	if got := s.Word.Players["a"].AttemptsLeft; got != game.DefaultAttempts-1 {
		t.Fatalf("attempts = %d, want %d", got, game.DefaultAttempts-1)
	}
	if s.CurrentPlayerID != "b" {
		t.Fatalf("current player = %s, want b", s.CurrentPlayerID)
	}
}

func TestLetterCompletingMaskIsCollectiveWin(t *testing.T) {
	svc, store, _, transport := newTestService(t)
	ctx := context.Background()
	transport.connect("AB12CD", "a")

	session := activeWordSession("AB12CD", "go", "a", "b")
	session.Word.Players["a"].Correct = []string{"g"}
	seedSession(t, store, session)

	if err := svc.GuessLetter(ctx, "AB12CD", "a", "o"); err != nil {
		t.Fatalf("guess: %v", err)
	}

	s, _ := store.Load(ctx, "AB12CD")
	if s.Phase != model.PhaseEnded || s.EndReason != ReasonWordRevealed {
		t.Fatalf("phase=%s reason=%s, want ended/word_revealed", s.Phase, s.EndReason)
	}
	// Everyone still standing shares the win.
	if !s.Word.Players["a"].Won || !s.Word.Players["b"].Won {
		t.Fatalf("winners: a=%v b=%v", s.Word.Players["a"].Won, s.Word.Players["b"].Won)
	}
	if transport.lastOfType("a", EventGameOver) == nil {
		t.Fatal("no game_over event")
	}
}

func TestAllEliminatedEndsWithNoWinner(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	session := activeWordSession("AB12CD", "ocean", "a", "b")
	session.Word.Players["b"].Eliminated = true
	session.Word.Players["a"].AttemptsLeft = 1
	seedSession(t, store, session)

	if err := svc.GuessWord(ctx, "AB12CD", "a", "whale"); err != nil {
		t.Fatalf("final miss: %v", err)
	}

	s, _ := store.Load(ctx, "AB12CD")
	if s.Phase != model.PhaseEnded || s.EndReason != ReasonNoWinner {
		t.Fatalf("phase=%s reason=%s, want ended/no_winner", s.Phase, s.EndReason)
	}
	if !s.Word.Players["a"].Eliminated {
		t.Fatal("last miss should eliminate")
	}
}

func TestTimeoutNoticeSkipsIneligiblePlayer(t *testing.T) {
	svc, store, _, transport := newTestService(t)
	transport.connect("AB12CD", "b")

	// The timer fires against a seat whose player was eliminated in the
	// meantime; the turn still rotates, but nobody is called out.
	session := activeWordSession("AB12CD", "ocean", "a", "b", "c")
	session.Word.Players["a"].Eliminated = true
	seedSession(t, store, session)

	svc.handleTurnTimeout("AB12CD")

	s, _ := store.Load(context.Background(), "AB12CD")
	if s.CurrentPlayerID != "b" {
		t.Fatalf("current player = %s, want b", s.CurrentPlayerID)
	}
	if transport.lastOfType("b", EventPlayerTimeout) != nil {
		t.Fatal("player_timeout sent for an eliminated player")
	}
	if transport.lastOfType("b", EventTurnChange) == nil {
		t.Fatal("no turn_change event")
	}
}
