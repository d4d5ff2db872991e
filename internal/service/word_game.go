package service

import (
	"context"
	"fmt"

	"minigames/internal/game"
	"minigames/internal/model"
)

// GuessLetter handles a single-letter guess by the current player. An
// accepted guess cancels the pending turn timer before anything else, so
// a timeout racing the guess cannot double-advance the turn.
func (s *SessionService) GuessLetter(ctx context.Context, lobbyCode, playerID, letter string) error {
	session, err := s.loadWordSession(ctx, lobbyCode)
	if err != nil {
		return err
	}
	if session.CurrentPlayerID != playerID {
		return ErrNotYourTurn
	}

	res, err := game.ApplyLetter(session.Word, playerID, letter)
	if err != nil {
		return err
	}
	s.sched.Cancel(turnKey(lobbyCode))

	if res.MaskComplete {
		// The last blank fell: everyone still standing shares the win.
		game.MarkCollectiveWin(session.Word, s.now())
		s.finalize(ctx, session, ReasonWordRevealed)
		if err := s.save(ctx, session); err != nil {
			return err
		}
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
		return nil
	}

	s.advanceTurn(session)
	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.bcast.Broadcast(session, EventGuessMade, map[string]interface{}{
		"playerId": playerID,
		"letter":   letter,
		"correct":  res.Correct,
	})
	if res.Eliminated {
		s.bcast.Broadcast(session, EventPlayerEliminated, map[string]interface{}{
			"playerId": playerID,
		})
	}
	if session.Phase == model.PhaseEnded {
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
	} else {
		s.bcast.Broadcast(session, EventTurnChange, nil)
	}
	return nil
}

// GuessWord handles a full-word guess: an exact match wins the game for
// the guesser alone, a miss costs an attempt and the turn.
func (s *SessionService) GuessWord(ctx context.Context, lobbyCode, playerID, word string) error {
	session, err := s.loadWordSession(ctx, lobbyCode)
	if err != nil {
		return err
	}
	if session.CurrentPlayerID != playerID {
		return ErrNotYourTurn
	}

	won, eliminated, err := game.ApplyWord(session.Word, playerID, word, s.now())
	if err != nil {
		return err
	}
	s.sched.Cancel(turnKey(lobbyCode))

	if won {
		s.finalize(ctx, session, ReasonWordGuessed)
		if err := s.save(ctx, session); err != nil {
			return err
		}
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"winner":        playerID,
			"finalRankings": session.Rankings,
		})
		return nil
	}

	s.advanceTurn(session)
	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.bcast.Broadcast(session, EventGuessMade, map[string]interface{}{
		"playerId": playerID,
		"correct":  false,
		"word":     true,
	})
	if eliminated {
		s.bcast.Broadcast(session, EventPlayerEliminated, map[string]interface{}{
			"playerId": playerID,
		})
	}
	if session.Phase == model.PhaseEnded {
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
	} else {
		s.bcast.Broadcast(session, EventTurnChange, nil)
	}
	return nil
}

// handleTurnTimeout is the turn timer callback. The scheduler has already
// verified the timer was not superseded; everything else is re-checked
// against fresh store state because the session may have ended meanwhile.
func (s *SessionService) handleTurnTimeout(lobbyCode string) {
	ctx, cancel := s.opCtx()
	defer cancel()

	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil || session == nil {
		return
	}
	if session.Phase != model.PhaseActive || session.Word == nil {
		return
	}

	timedOut := session.CurrentPlayerID
	// The notice only concerns a player who could still have acted.
	eligible := false
	if wp := session.Word.Players[timedOut]; wp != nil && !wp.Eliminated && !wp.Won {
		eligible = true
	}
	s.advanceTurn(session)
	if err := s.save(ctx, session); err != nil {
		// A concurrent guess won the race; its save already advanced the
		// turn and this callback's view is stale.
		s.log.Debug().Str("lobby", lobbyCode).Err(err).Msg("timeout superseded")
		return
	}

	if eligible {
		s.bcast.Broadcast(session, EventPlayerTimeout, map[string]interface{}{
			"playerId": timedOut,
		})
	}
	if session.Phase == model.PhaseEnded {
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
	} else {
		s.bcast.Broadcast(session, EventTurnChange, nil)
	}
}

// advanceTurn rotates to the next active player, or settles the outcome
// when nobody is left to act. A lone remaining player keeps the turn with
// no timeout pressure.
func (s *SessionService) advanceTurn(session *model.GameSession) {
	s.advanceTurnFrom(session, session.TurnOrder, session.CurrentPlayerID)
}

// advanceTurnFrom rotates using an explicit order and pivot. The pivot
// may be a player no longer in the session (a leaver): the rotation then
// continues from the seat they held, not from the front.
func (s *SessionService) advanceTurnFrom(session *model.GameSession, order []string, current string) {
	active := game.ActivePlayers(session)
	if len(active) == 0 {
		ctx, cancel := s.opCtx()
		defer cancel()
		s.endWordGame(ctx, session)
		return
	}

	next, _ := game.NextTurn(order, current, active)
	session.CurrentPlayerID = next
	session.TurnStartedAt = s.now()

	if len(active) > 1 {
		s.armTurnTimer(session.LobbyCode)
	} else {
		s.sched.Cancel(turnKey(session.LobbyCode))
	}
}

// endWordGame decides the outcome with no active players left: a fully
// revealed word is a collective win, anything else a no-winner end. The
// caller saves and broadcasts.
func (s *SessionService) endWordGame(ctx context.Context, session *model.GameSession) {
	reason := ReasonNoWinner
	if game.MaskComplete(session.Word) {
		game.MarkCollectiveWin(session.Word, s.now())
		reason = ReasonWordRevealed
	}
	s.finalize(ctx, session, reason)
}

func (s *SessionService) armTurnTimer(lobbyCode string) {
	s.sched.Arm(turnKey(lobbyCode), s.timings.TurnDuration, func() {
		s.handleTurnTimeout(lobbyCode)
	})
}

func (s *SessionService) loadWordSession(ctx context.Context, lobbyCode string) (*model.GameSession, error) {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Phase != model.PhaseActive || session.Word == nil {
		return nil, ErrNotStarted
	}
	return session, nil
}
