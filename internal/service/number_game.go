package service

import (
	"context"
	"fmt"

	"minigames/internal/game"
	"minigames/internal/model"
)

// Draw handles a manual draw by the designated drawer.
func (s *SessionService) Draw(ctx context.Context, lobbyCode, playerID string) error {
	session, err := s.loadNumberSession(ctx, lobbyCode)
	if err != nil {
		return err
	}
	if session.Numbers.DrawMode != model.DrawManual {
		return ErrNotDrawer
	}
	if playerID != session.Numbers.DrawerID {
		return ErrNotDrawer
	}
	return s.drawOne(ctx, session)
}

// handleAutoDraw is the auto-mode interval callback: one number per tick
// until the pool empties or everyone completes.
func (s *SessionService) handleAutoDraw(lobbyCode string) {
	ctx, cancel := s.opCtx()
	defer cancel()

	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil || session == nil {
		s.sched.Cancel(drawKey(lobbyCode))
		return
	}
	if session.Phase != model.PhaseActive || session.Numbers == nil ||
		session.Numbers.DrawMode != model.DrawAuto {
		s.sched.Cancel(drawKey(lobbyCode))
		return
	}

	if err := s.drawOne(ctx, session); err != nil {
		s.log.Debug().Str("lobby", lobbyCode).Err(err).Msg("auto draw skipped")
	}
}

// drawOne pops a number, schedules its two-phase clear, and finalizes the
// round when the pool runs dry or every ticket is complete.
func (s *SessionService) drawOne(ctx context.Context, session *model.GameSession) error {
	lobbyCode := session.LobbyCode
	n, err := game.DrawNext(session.Numbers)
	if err != nil {
		return err
	}

	done := len(session.Numbers.Pool) == 0 || game.AllComplete(session.Numbers)
	if done {
		reason := ReasonPoolExhausted
		if game.AllComplete(session.Numbers) {
			reason = ReasonAllComplete
		}
		s.finalize(ctx, session, reason)
	}

	if err := s.save(ctx, session); err != nil {
		return err
	}

	if !done {
		// The number stays "just called" for a beat, then clears from the
		// active set while remaining drawn.
		s.sched.Arm(clearKey(lobbyCode, n), s.timings.ClearDelay, func() {
			s.handleClear(lobbyCode, n)
		})
	}

	s.bcast.Broadcast(session, EventNumberDrawn, map[string]interface{}{
		"number": n,
	})
	if done {
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
	}
	return nil
}

// handleClear removes a number from the just-called set.
func (s *SessionService) handleClear(lobbyCode string, n int) {
	ctx, cancel := s.opCtx()
	defer cancel()

	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil || session == nil || session.Numbers == nil {
		return
	}
	if session.Phase != model.PhaseActive {
		return
	}

	game.ClearActive(session.Numbers, n)
	if err := s.save(ctx, session); err != nil {
		s.log.Debug().Str("lobby", lobbyCode).Err(err).Msg("clear skipped")
		return
	}
	s.bcast.Broadcast(session, EventNumberCleared, map[string]interface{}{
		"number": n,
	})
}

// MarkNumber records a player marking a drawn number on their ticket. The
// result is private: only the requester hears about it.
func (s *SessionService) MarkNumber(ctx context.Context, lobbyCode, playerID string, number int) error {
	session, err := s.loadNumberSession(ctx, lobbyCode)
	if err != nil {
		return err
	}
	if !session.IsParticipant(playerID) {
		return ErrNotParticipant
	}
	if err := game.MarkNumber(session.Numbers, playerID, number); err != nil {
		return err
	}
	if err := s.save(ctx, session); err != nil {
		return err
	}
	s.bcast.SendTo(session, playerID, EventNumberMarked, map[string]interface{}{
		"number": number,
	})
	return nil
}

// Call handles a completed-ticket claim: stamp the completion, announce
// the rank, and finalize if that was the last open ticket.
func (s *SessionService) Call(ctx context.Context, lobbyCode, playerID string) error {
	session, err := s.loadNumberSession(ctx, lobbyCode)
	if err != nil {
		return err
	}
	if !session.IsParticipant(playerID) {
		return ErrNotParticipant
	}
	if err := game.Call(session.Numbers, playerID, s.now()); err != nil {
		return err
	}

	rankings := game.Rank(session)
	rank := 0
	for _, e := range rankings {
		if e.PlayerID == playerID {
			rank = e.Rank
			break
		}
	}

	done := game.AllComplete(session.Numbers)
	if done {
		s.finalize(ctx, session, ReasonAllComplete)
	}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.bcast.Broadcast(session, EventCallSuccess, map[string]interface{}{
		"playerId": playerID,
		"rank":     rank,
		"rankings": rankings,
	})
	if done {
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
	}
	return nil
}

func (s *SessionService) armAutoDraw(lobbyCode string) {
	s.sched.ArmInterval(drawKey(lobbyCode), s.timings.DrawInterval, func() {
		s.handleAutoDraw(lobbyCode)
	})
}

func (s *SessionService) loadNumberSession(ctx context.Context, lobbyCode string) (*model.GameSession, error) {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Phase != model.PhaseActive || session.Numbers == nil {
		return nil, ErrNotStarted
	}
	return session, nil
}
