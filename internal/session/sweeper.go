package session

import (
	"context"
	"time"

	"github.com/sandevgo/docqa/pkg/log"
)

// Sweeper periodically evicts expired sessions so write-and-abandon sessions
// are reclaimed before the LRU cap forces them out. Lazy expiry on access
// already keeps expired data invisible; this only bounds memory.
type Sweeper struct {
	store    *Store
	interval time.Duration
	done     chan struct{}
}

func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.store.EvictExpired(); removed > 0 {
				log.FromCtx(ctx).Debug().Int("removed", removed).Msg("swept expired chat sessions")
			}
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Sweeper) Shutdown(ctx context.Context) error {
	close(s.done)
	return nil
}
