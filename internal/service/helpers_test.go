package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"minigames/internal/cache"
	"minigames/internal/game"
	"minigames/internal/model"
	"minigames/internal/scheduler"
)

// fakeStore is an in-memory SessionStore with the same optimistic
// concurrency contract as the Redis one: Save fails with a version
// conflict when the stored session moved past the caller's copy.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Load(_ context.Context, lobbyCode string) (*model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[lobbyCode]
	if !ok {
		return nil, nil
	}
	var s model.GameSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (f *fakeStore) Save(_ context.Context, session *model.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, ok := f.data[session.LobbyCode]; ok {
		var stored struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(raw, &stored); err != nil {
			return err
		}
		if stored.Version != session.Version {
			return cache.ErrVersionConflict
		}
	}
	session.Version++
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	f.data[session.LobbyCode] = raw
	return nil
}

func (f *fakeStore) Delete(_ context.Context, lobbyCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, lobbyCode)
	return nil
}

// fakeStats records finished games in memory with insert-once semantics.
type fakeStats struct {
	mu      sync.Mutex
	records map[string]*model.GameRecord
	inserts int
}

func newFakeStats() *fakeStats {
	return &fakeStats{records: make(map[string]*model.GameRecord)}
}

func (f *fakeStats) InsertOnce(_ context.Context, record *model.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if _, ok := f.records[record.GameID]; !ok {
		f.records[record.GameID] = record
	}
	return nil
}

func (f *fakeStats) GetByGameID(_ context.Context, gameID string) (*model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[gameID], nil
}

func (f *fakeStats) ListByLobby(_ context.Context, lobbyCode string, _ int64) ([]*model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.GameRecord
	for _, r := range f.records {
		if r.LobbyCode == lobbyCode {
			out = append(out, r)
		}
	}
	return out, nil
}

type sentMsg struct {
	Lobby   string
	Player  string
	Type    string
	Payload interface{}
}

// fakeTransport records every send and tracks a connected set per lobby.
type fakeTransport struct {
	mu        sync.Mutex
	connected map[string]map[string]bool
	sent      []sentMsg
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{connected: make(map[string]map[string]bool)}
}

func (f *fakeTransport) connect(lobbyCode, playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected[lobbyCode] == nil {
		f.connected[lobbyCode] = make(map[string]bool)
	}
	f.connected[lobbyCode][playerID] = true
}

func (f *fakeTransport) Send(lobbyCode, playerID, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{lobbyCode, playerID, msgType, payload})
}

func (f *fakeTransport) IsConnected(lobbyCode, playerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[lobbyCode][playerID]
}

func (f *fakeTransport) Connected(lobbyCode string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.connected[lobbyCode] {
		ids = append(ids, id)
	}
	return ids
}

// sentTo filters the recorded sends down to one recipient.
func (f *fakeTransport) sentTo(playerID string) []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMsg
	for _, m := range f.sent {
		if m.Player == playerID {
			out = append(out, m)
		}
	}
	return out
}

// lastOfType returns the most recent send of the given type to the
// player, or nil.
func (f *fakeTransport) lastOfType(playerID, msgType string) *sentMsg {
	msgs := f.sentTo(playerID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == msgType {
			return &msgs[i]
		}
	}
	return nil
}

func testTimings() Timings {
	// Long enough that no timer fires on its own during a test.
	return Timings{
		TurnDuration:     time.Hour,
		DrawInterval:     time.Hour,
		ClearDelay:       time.Hour,
		CountdownSeconds: 1,
	}
}

func newTestService(t *testing.T) (*SessionService, *fakeStore, *fakeStats, *fakeTransport) {
	t.Helper()
	store := newFakeStore()
	stats := newFakeStats()
	transport := newFakeTransport()
	bcast := NewSessionBroadcaster(transport, time.Hour, zerolog.Nop())
	svc := NewSessionService(
		store, stats, scheduler.New(), bcast,
		NewNicknameIdentity(), testTimings(), 8, zerolog.Nop(),
	)
	return svc, store, stats, transport
}

// seedSession writes a prepared session into the store.
func seedSession(t *testing.T, store *fakeStore, s *model.GameSession) {
	t.Helper()
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

// activeWordSession builds a mid-round word game. The first player is
// host and holds the turn.
func activeWordSession(lobbyCode, word string, playerIDs ...string) *model.GameSession {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := &model.GameSession{
		SessionHeader: model.SessionHeader{
			LobbyCode:       lobbyCode,
			GameID:          "game-" + lobbyCode,
			Mode:            model.ModeWord,
			Phase:           model.PhaseActive,
			HostID:          playerIDs[0],
			HostPlays:       true,
			Players:         make(map[string]*model.Player),
			TurnOrder:       playerIDs,
			CurrentPlayerID: playerIDs[0],
			TurnStartedAt:   now,
			CreatedAt:       now,
			StartedAt:       now,
		},
		Word: game.NewWordState(word, "", playerIDs),
	}
	for i, id := range playerIDs {
		s.Players[id] = &model.Player{
			ID:       id,
			Name:     "Player " + id,
			JoinedAt: now.Add(time.Duration(i) * time.Second),
		}
	}
	return s
}
