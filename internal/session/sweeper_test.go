package session

import (
	"context"
	"testing"
	"time"

	"github.com/sandevgo/docqa/internal/core"
)

func TestSweeper_RemovesAbandonedSessions(t *testing.T) {
	s, clock := newTestStore(Config{TTL: time.Minute})

	// Write-and-abandon sessions: never read again.
	for _, id := range []string{"a", "b"} {
		if err := s.Append(id, core.RoleUser, "hi"); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(2 * time.Minute)

	sweeper := NewSweeper(s, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		resident := len(s.sessions)
		s.mu.Unlock()
		if resident == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("sweeper did not evict, %d sessions resident", resident)
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := sweeper.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Start() returned error = %v", err)
	}
}

func TestSweeper_DefaultInterval(t *testing.T) {
	sweeper := NewSweeper(NewStore(DefaultConfig()), 0)
	if sweeper.interval <= 0 {
		t.Error("expected a positive default interval")
	}
}
