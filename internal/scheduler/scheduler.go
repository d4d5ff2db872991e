// Package scheduler provides per-key timers for game sessions. Every arm
// records a token; a firing timer re-checks its token is still current,
// so a timer superseded by a newer arm (or a cancel) is a silent no-op.
package scheduler

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	token    uint64
	stop     func()
	interval bool
}

// Scheduler owns one logical timer per key. Keys are namespaced by the
// caller (e.g. "turn:AB12CD"). Cancel is O(1) by key.
type Scheduler struct {
	mu     sync.Mutex
	next   uint64
	timers map[string]*entry
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[string]*entry)}
}

// Arm schedules fn to run once after delay, replacing any timer already
// armed under the same key.
func (s *Scheduler) Arm(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(key)
	s.next++
	token := s.next

	t := time.AfterFunc(delay, func() {
		if !s.claim(key, token) {
			return
		}
		fn()
	})
	s.timers[key] = &entry{token: token, stop: func() { t.Stop() }}
}

// ArmInterval schedules fn on a recurring cadence until the key is
// cancelled or re-armed. The first fire happens after one full interval.
func (s *Scheduler) ArmInterval(key string, every time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(key)
	s.next++
	token := s.next

	ticker := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if !s.current(key, token) {
					return
				}
				fn()
			case <-done:
				return
			}
		}
	}()
	s.timers[key] = &entry{
		token:    token,
		interval: true,
		stop: func() {
			ticker.Stop()
			close(done)
		},
	}
}

// Cancel stops and forgets the timer for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
}

// CancelPrefix stops every timer whose key starts with prefix. Used when
// a session is deleted so no callback outlives its session.
func (s *Scheduler) CancelPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.timers {
		if strings.HasPrefix(key, prefix) {
			s.cancelLocked(key)
		}
	}
}

// claim atomically verifies the token is current and, for one-shot
// timers, removes the entry so the key is free to re-arm from within fn.
func (s *Scheduler) claim(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[key]
	if !ok || e.token != token {
		return false
	}
	delete(s.timers, key)
	return true
}

// current verifies the token without consuming the entry (interval fires).
func (s *Scheduler) current(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[key]
	return ok && e.token == token
}

func (s *Scheduler) cancelLocked(key string) {
	if e, ok := s.timers[key]; ok {
		e.stop()
		delete(s.timers, key)
	}
}
