package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"minigames/internal/cache"
	"minigames/internal/game"
	"minigames/internal/model"
	"minigames/internal/repository"
	"minigames/internal/scheduler"
)

// End reasons recorded on the session and in the persisted stats.
const (
	ReasonWordGuessed   = "word_guessed"
	ReasonWordRevealed  = "word_revealed"
	ReasonNoWinner      = "no_winner"
	ReasonPoolExhausted = "pool_exhausted"
	ReasonAllComplete   = "all_complete"
	ReasonHostEnded     = "host_ended"
	ReasonHostLeft      = "host_left"
)

// Timings collects the wall-clock knobs of the engine.
type Timings struct {
	TurnDuration     time.Duration
	DrawInterval     time.Duration
	ClearDelay       time.Duration
	CountdownSeconds int
}

// StartOptions parameterize a round start.
type StartOptions struct {
	Mode      model.GameMode
	Word      string
	Category  string
	DrawMode  model.DrawMode
	DrawerID  string
	HostPlays bool
}

// SessionService orchestrates every session action through the same
// pipeline: load from the store, validate, mutate a local copy, re-arm or
// cancel timers, save, broadcast. Timer callbacks re-enter this pipeline
// asynchronously.
type SessionService struct {
	store      cache.SessionStore
	stats      repository.StatsRepo
	sched      *scheduler.Scheduler
	bcast      *SessionBroadcaster
	identity   IdentityProvider
	timings    Timings
	maxPlayers int
	log        zerolog.Logger

	now func() time.Time
}

func NewSessionService(
	store cache.SessionStore,
	stats repository.StatsRepo,
	sched *scheduler.Scheduler,
	bcast *SessionBroadcaster,
	identity IdentityProvider,
	timings Timings,
	maxPlayers int,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		store:      store,
		stats:      stats,
		sched:      sched,
		bcast:      bcast,
		identity:   identity,
		timings:    timings,
		maxPlayers: maxPlayers,
		log:        log,
		now:        time.Now,
	}
}

// Timer keys are namespaced under the lobby code so deleting a session
// can cancel everything it owns with one prefix sweep.
func turnKey(code string) string      { return code + ":turn" }
func drawKey(code string) string      { return code + ":draw" }
func countdownKey(code string) string { return code + ":countdown" }
func clearKey(code string, n int) string {
	return code + ":clear:" + strconv.Itoa(n)
}

// Join adds a player to a lobby, creating the session on first join. The
// first joiner becomes host.
func (s *SessionService) Join(ctx context.Context, lobbyCode, nickname, avatar string) (string, error) {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	playerID := "p_" + uuid.New().String()[:8]
	now := s.now()

	if session == nil {
		session = &model.GameSession{
			SessionHeader: model.SessionHeader{
				LobbyCode: lobbyCode,
				Phase:     model.PhaseLobby,
				HostID:    playerID,
				HostPlays: true,
				Players:   make(map[string]*model.Player),
				CreatedAt: now,
			},
		}
	}

	if session.Phase != model.PhaseLobby {
		// Mid-game joiners become spectators at connect time; they get a
		// token but no roster slot.
		return playerID, nil
	}
	if len(session.Players) >= s.maxPlayers {
		return "", ErrLobbyFull
	}

	name, av := nickname, avatar
	if ident, err := s.identity.Lookup(ctx, playerID); err == nil && ident != nil {
		name, av = ident.Name, ident.Avatar
	}

	session.Players[playerID] = &model.Player{
		ID:       playerID,
		Name:     name,
		Avatar:   av,
		JoinedAt: now,
	}

	if err := s.save(ctx, session); err != nil {
		return "", err
	}
	s.bcast.Broadcast(session, EventPlayerJoined, map[string]interface{}{
		"playerId": playerID,
	})
	s.log.Info().Str("lobby", lobbyCode).Str("player", playerID).Msg("player joined")
	return playerID, nil
}

// Connect handles a transport connection coming up: a fresh joiner gets a
// joined sync, a returning player a single reconnected state sync, and
// anyone off the roster the spectator feed.
func (s *SessionService) Connect(ctx context.Context, lobbyCode, playerID string) error {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if _, ok := session.Players[playerID]; !ok {
		s.bcast.SendTo(session, playerID, EventSpectatorState, nil)
		return nil
	}
	event := EventJoined
	if session.Phase != model.PhaseLobby {
		event = EventReconnected
	}
	s.bcast.SendTo(session, playerID, event, nil)
	return nil
}

// Leave removes a player from the session. A leaving host ends the game;
// the last player out deletes the session.
func (s *SessionService) Leave(ctx context.Context, lobbyCode, playerID string) error {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil
	}
	if _, ok := session.Players[playerID]; !ok {
		return nil
	}

	wasCurrent := session.CurrentPlayerID == playerID
	prevOrder := append([]string(nil), session.TurnOrder...)
	session.RemovePlayer(playerID)

	if len(session.Players) == 0 {
		return s.Delete(ctx, lobbyCode)
	}

	if playerID == session.HostID && session.Phase != model.PhaseEnded {
		if session.Phase != model.PhaseActive {
			// No game is running; the lobby cannot continue without its
			// host. Announce and drop it, countdown timers included.
			s.bcast.Broadcast(session, EventRoundCancelled, map[string]interface{}{
				"playerId": playerID,
			})
			return s.Delete(ctx, lobbyCode)
		}
		s.finalize(ctx, session, ReasonHostLeft)
		if err := s.save(ctx, session); err != nil {
			return err
		}
		s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
			"reason":        session.EndReason,
			"finalRankings": session.Rankings,
		})
		return nil
	}

	if session.Phase == model.PhaseActive && session.Mode == model.ModeWord {
		if wasCurrent {
			// Rotate from the seat the leaver held; they are already out
			// of the turn order.
			s.advanceTurnFrom(session, prevOrder, playerID)
		} else if len(game.ActivePlayers(session)) == 0 {
			s.endWordGame(ctx, session)
		}
	}

	if err := s.save(ctx, session); err != nil {
		return err
	}
	event := EventPlayerLeft
	if session.Phase == model.PhaseEnded {
		event = EventGameOver
	}
	s.bcast.Broadcast(session, event, map[string]interface{}{"playerId": playerID})
	s.log.Info().Str("lobby", lobbyCode).Str("player", playerID).Msg("player left")
	return nil
}

// Start begins a new round: fields reset, fresh game ID, countdown, then
// activation. Only the host may start, and only from lobby or ended.
func (s *SessionService) Start(ctx context.Context, lobbyCode, playerID string, opts StartOptions) error {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if playerID != session.HostID {
		return ErrNotHost
	}
	if session.Phase == model.PhaseActive || session.Phase == model.PhaseCountdown {
		return ErrAlreadyStarted
	}

	session.GameID = uuid.New().String()
	session.Phase = model.PhaseCountdown
	session.HostPlays = opts.HostPlays
	session.Mode = opts.Mode
	session.StartedAt = s.now()
	session.EndedAt = nil
	session.EndReason = ""
	session.Rankings = nil
	session.CurrentPlayerID = ""
	session.TurnOrder = nil
	session.Word = nil
	session.Numbers = nil

	participants := session.ParticipantIDs()
	if len(participants) == 0 {
		return ErrBadStart
	}

	rng := rand.New(rand.NewSource(s.now().UnixNano()))
	switch opts.Mode {
	case model.ModeWord:
		if opts.Word == "" {
			return ErrBadStart
		}
		session.TurnOrder = participants
		session.Word = game.NewWordState(opts.Word, opts.Category, participants)
	case model.ModeNumbers:
		drawMode := opts.DrawMode
		if drawMode == "" {
			drawMode = model.DrawAuto
		}
		drawer := opts.DrawerID
		if drawMode == model.DrawManual && drawer == "" {
			drawer = session.HostID
		}
		ns, err := game.NewNumberState(rng, drawMode, drawer, participants)
		if err != nil {
			return fmt.Errorf("generate tickets: %w", err)
		}
		session.Numbers = ns
	default:
		return ErrBadStart
	}

	if err := s.save(ctx, session); err != nil {
		return err
	}

	s.runCountdown(lobbyCode, s.timings.CountdownSeconds)
	s.bcast.Broadcast(session, EventCountdown, map[string]interface{}{
		"n": s.timings.CountdownSeconds,
	})
	s.log.Info().
		Str("lobby", lobbyCode).
		Str("game_id", session.GameID).
		Str("mode", string(opts.Mode)).
		Msg("round starting")
	return nil
}

// runCountdown arms one-second ticks that only touch the transport, then
// activates the round. A restart re-arms the key, superseding the chain.
func (s *SessionService) runCountdown(lobbyCode string, n int) {
	s.sched.Arm(countdownKey(lobbyCode), time.Second, func() {
		ctx, cancel := s.opCtx()
		defer cancel()

		session, err := s.store.Load(ctx, lobbyCode)
		if err != nil || session == nil || session.Phase != model.PhaseCountdown {
			return
		}
		if n <= 1 {
			s.activate(ctx, session)
			return
		}
		s.bcast.Broadcast(session, EventCountdown, map[string]interface{}{"n": n - 1})
		s.runCountdown(lobbyCode, n-1)
	})
}

// activate flips countdown to active, seats the first turn or starts the
// draw cadence, and announces the round.
func (s *SessionService) activate(ctx context.Context, session *model.GameSession) {
	session.Phase = model.PhaseActive

	switch session.Mode {
	case model.ModeWord:
		active := game.ActivePlayers(session)
		if next, ok := game.NextTurn(session.TurnOrder, "", active); ok {
			session.CurrentPlayerID = next
			session.TurnStartedAt = s.now()
			if len(active) > 1 {
				s.armTurnTimer(session.LobbyCode)
			}
		}
	case model.ModeNumbers:
		if session.Numbers.DrawMode == model.DrawAuto {
			s.armAutoDraw(session.LobbyCode)
		}
	}

	if err := s.save(ctx, session); err != nil {
		s.log.Error().Err(err).Str("lobby", session.LobbyCode).Msg("activate save failed")
		return
	}
	s.bcast.Broadcast(session, EventStarted, nil)
}

// End is the host's explicit stop; it finalizes whatever is in flight.
func (s *SessionService) End(ctx context.Context, lobbyCode, playerID string) error {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if playerID != session.HostID {
		return ErrNotHost
	}
	if session.Phase == model.PhaseEnded {
		return nil
	}
	if session.Phase != model.PhaseActive {
		// Nothing ran yet; calling off a countdown drops back to the
		// lobby rather than ending a game that never started.
		s.sched.CancelPrefix(lobbyCode + ":")
		session.Phase = model.PhaseLobby
		session.GameID = ""
		session.Mode = ""
		session.CurrentPlayerID = ""
		session.TurnOrder = nil
		session.Word = nil
		session.Numbers = nil
		if err := s.save(ctx, session); err != nil {
			return err
		}
		s.bcast.Broadcast(session, EventRoundCancelled, nil)
		return nil
	}

	s.finalize(ctx, session, ReasonHostEnded)
	if err := s.save(ctx, session); err != nil {
		return err
	}
	s.bcast.Broadcast(session, EventGameOver, map[string]interface{}{
		"reason":        session.EndReason,
		"finalRankings": session.Rankings,
	})
	return nil
}

// Delete removes the session outright. Timers go first so no callback can
// operate on a deleted key.
func (s *SessionService) Delete(ctx context.Context, lobbyCode string) error {
	s.sched.CancelPrefix(lobbyCode + ":")
	return s.store.Delete(ctx, lobbyCode)
}

// Snapshot returns the shared view for HTTP reads; private views are only
// ever delivered over the player's own connection.
func (s *SessionService) Snapshot(ctx context.Context, lobbyCode string) (*SharedView, error) {
	session, err := s.store.Load(ctx, lobbyCode)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	v := buildSharedView(session, s.timings.TurnDuration)
	return &v, nil
}

// finalize is the single Active→Ended transition. It is guarded by the
// phase check here plus the stats repo's insert-once semantics, so racing
// end triggers persist exactly one record.
func (s *SessionService) finalize(ctx context.Context, session *model.GameSession, reason string) {
	if session.Phase == model.PhaseEnded {
		return
	}
	now := s.now()
	session.Phase = model.PhaseEnded
	session.EndedAt = &now
	session.EndReason = reason
	session.CurrentPlayerID = ""
	session.Rankings = game.Rank(session)

	s.sched.CancelPrefix(session.LobbyCode + ":")

	// A round that never started has no record to keep.
	if session.GameID == "" {
		return
	}
	if err := s.stats.InsertOnce(ctx, buildRecord(session)); err != nil {
		// The session still ends; stats are best-effort durable.
		s.log.Error().Err(err).
			Str("lobby", session.LobbyCode).
			Str("game_id", session.GameID).
			Msg("stats write failed")
	}
	s.log.Info().
		Str("lobby", session.LobbyCode).
		Str("game_id", session.GameID).
		Str("reason", reason).
		Msg("game over")
}

func buildRecord(session *model.GameSession) *model.GameRecord {
	rec := &model.GameRecord{
		GameID:    session.GameID,
		LobbyCode: session.LobbyCode,
		Mode:      session.Mode,
		StartedAt: session.StartedAt,
		EndedAt:   *session.EndedAt,
		EndReason: session.EndReason,
		CreatedBy: session.HostID,
	}
	if session.Word != nil {
		rec.Answer = session.Word.Word
	}
	if session.Numbers != nil {
		rec.Drawn = session.Numbers.Drawn
	}
	for _, e := range session.Rankings {
		rec.Players = append(rec.Players, model.PlayerResult{
			PlayerID:    e.PlayerID,
			Name:        e.Name,
			Score:       e.Score,
			CompletedAt: e.CompletedAt,
			FinalRank:   e.Rank,
		})
		won := false
		if session.Word != nil {
			if wp := session.Word.Players[e.PlayerID]; wp != nil {
				won = wp.Won
			}
		}
		if session.Numbers != nil {
			if np := session.Numbers.Players[e.PlayerID]; np != nil {
				won = np.CompletedAt != nil
			}
		}
		if won {
			rec.Winners = append(rec.Winners, e.PlayerID)
		}
	}
	return rec
}

// save maps a lost optimistic-concurrency race to the retryable conflict
// error; nothing was committed.
func (s *SessionService) save(ctx context.Context, session *model.GameSession) error {
	err := s.store.Save(ctx, session)
	if errors.Is(err, cache.ErrVersionConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// opCtx bounds timer-driven operations, which have no request context.
func (s *SessionService) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
