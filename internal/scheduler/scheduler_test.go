package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestArmFiresOnce(t *testing.T) {
	s := New()
	var fired int32
	done := make(chan struct{})

	s.Arm("k", 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("fired %d times, want 1", n)
	}
}

func TestCancelPreventsFire(t *testing.T) {
	s := New()
	var fired int32

	s.Arm("k", 20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Cancel("k")

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Fatalf("cancelled timer fired %d times", n)
	}
}

func TestRearmSupersedes(t *testing.T) {
	s := New()
	var stale, fresh int32
	done := make(chan struct{})

	s.Arm("k", 20*time.Millisecond, func() { atomic.AddInt32(&stale, 1) })
	s.Arm("k", 40*time.Millisecond, func() {
		atomic.AddInt32(&fresh, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replacement timer never fired")
	}
	if n := atomic.LoadInt32(&stale); n != 0 {
		t.Fatalf("superseded timer fired %d times", n)
	}
	if n := atomic.LoadInt32(&fresh); n != 1 {
		t.Fatalf("replacement fired %d times, want 1", n)
	}
}

func TestRearmFromCallback(t *testing.T) {
	// A one-shot fire consumes its entry, so fn may arm the same key again.
	s := New()
	done := make(chan struct{})

	s.Arm("k", 10*time.Millisecond, func() {
		s.Arm("k", 10*time.Millisecond, func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chained timer never fired")
	}
}

func TestCancelPrefix(t *testing.T) {
	s := New()
	var lobby, other int32

	s.Arm("AB12:turn", 20*time.Millisecond, func() { atomic.AddInt32(&lobby, 1) })
	s.Arm("AB12:draw", 20*time.Millisecond, func() { atomic.AddInt32(&lobby, 1) })
	otherDone := make(chan struct{})
	s.Arm("CD34:turn", 20*time.Millisecond, func() {
		atomic.AddInt32(&other, 1)
		close(otherDone)
	})

	s.CancelPrefix("AB12:")

	select {
	case <-otherDone:
	case <-time.After(time.Second):
		t.Fatal("unrelated timer never fired")
	}
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&lobby); n != 0 {
		t.Fatalf("prefix-cancelled timers fired %d times", n)
	}
	if n := atomic.LoadInt32(&other); n != 1 {
		t.Fatalf("unrelated timer fired %d times, want 1", n)
	}
}

func TestArmIntervalRepeats(t *testing.T) {
	s := New()
	var fired int32

	s.ArmInterval("k", 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(100 * time.Millisecond)
	s.Cancel("k")
	time.Sleep(20 * time.Millisecond)
	n := atomic.LoadInt32(&fired)
	if n < 2 {
		t.Fatalf("interval fired %d times, want at least 2", n)
	}

	time.Sleep(50 * time.Millisecond)
	if m := atomic.LoadInt32(&fired); m != n {
		t.Fatalf("interval fired after cancel: %d -> %d", n, m)
	}
}
