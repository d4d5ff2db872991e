package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"minigames/internal/model"
)

// ErrVersionConflict means the stored session changed between Load and
// Save. The action should be rejected and retried from a fresh load.
var ErrVersionConflict = errors.New("cache: session modified concurrently")

// SessionStore is the authoritative store for in-progress sessions. The
// backing store is a TTL key-value store with no locking: all mutation is
// read-modify-write, guarded by the session's version field on save.
type SessionStore interface {
	// Load returns nil, nil when no session exists for the lobby.
	Load(ctx context.Context, lobbyCode string) (*model.GameSession, error)
	Save(ctx context.Context, session *model.GameSession) error
	Delete(ctx context.Context, lobbyCode string) error
}

type sessionStore struct {
	client   *redis.Client
	liveTTL  time.Duration
	endedTTL time.Duration
}

// NewSessionStore creates a Redis-backed session store. Live sessions get
// liveTTL; ended sessions are kept for endedTTL so late reads of the
// final state still succeed, then the store reaps them.
func NewSessionStore(client *redis.Client, liveTTL, endedTTL time.Duration) SessionStore {
	return &sessionStore{
		client:   client,
		liveTTL:  liveTTL,
		endedTTL: endedTTL,
	}
}

func (s *sessionStore) key(lobbyCode string) string {
	return fmt.Sprintf("game:%s", lobbyCode)
}

func (s *sessionStore) Load(ctx context.Context, lobbyCode string) (*model.GameSession, error) {
	data, err := s.client.Get(ctx, s.key(lobbyCode)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save writes the session back, conditional on the stored version still
// matching the version the caller loaded. The version is bumped as part
// of the write.
func (s *sessionStore) Save(ctx context.Context, session *model.GameSession) error {
	key := s.key(session.LobbyCode)
	ttl := s.ttlFor(session)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == nil {
			var stored struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal([]byte(data), &stored); err != nil {
				return err
			}
			if stored.Version != session.Version {
				return ErrVersionConflict
			}
		} else if err != redis.Nil {
			return err
		}

		session.Version++
		payload, err := json.Marshal(session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

// ttlFor keeps ended sessions around only briefly for final-state reads;
// live sessions get the long TTL.
func (s *sessionStore) ttlFor(session *model.GameSession) time.Duration {
	if session.Phase == model.PhaseEnded {
		return s.endedTTL
	}
	return s.liveTTL
}

func (s *sessionStore) Delete(ctx context.Context, lobbyCode string) error {
	return s.client.Del(ctx, s.key(lobbyCode)).Err()
}
