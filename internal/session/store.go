// Package session holds all in-memory chat history for the process lifetime.
// Sessions are bounded message buffers keyed by a caller-supplied opaque id,
// evicted LRU when the session cap is reached and expired after a TTL of
// inactivity. Nothing here is persisted; state is lost on restart by design.
package session

import (
	"sync"
	"time"

	"github.com/sandevgo/docqa/internal/core"
)

type Config struct {
	MaxSessions           int
	MaxMessagesPerSession int
	TTL                   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSessions:           1000,
		MaxMessagesPerSession: 100,
		TTL:                   time.Hour,
	}
}

// Stats is the snapshot republished verbatim by the stats endpoint.
// Counters cover non-expired sessions only.
type Stats struct {
	ActiveSessions        int `json:"active_sessions"`
	TotalMessages         int `json:"total_messages"`
	MaxSessions           int `json:"max_sessions"`
	MaxMessagesPerSession int `json:"max_messages_per_session"`
	SessionTTLSeconds     int `json:"session_ttl_seconds"`
}

type entry struct {
	messages     []core.Message
	createdAt    time.Time
	lastAccessed time.Time
}

// Store is safe for concurrent use. A single mutex guards the whole session
// map; every operation is O(1) or O(sessions) in-memory bookkeeping, so the
// coarse lock keeps expiry checks and access-time refreshes atomic per
// session without finer-grained locking.
type Store struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*entry

	now func() time.Time // swapped out in tests
}

func NewStore(cfg Config) *Store {
	def := DefaultConfig()
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.MaxMessagesPerSession <= 0 {
		cfg.MaxMessagesPerSession = def.MaxMessagesPerSession
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &Store{
		cfg:      cfg,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Append records one turn, creating the session on first use. Creating a new
// session at capacity evicts the least-recently-used session first. The
// message buffer is truncated FIFO so at most MaxMessagesPerSession remain.
func (s *Store) Append(sessionID, role, content string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if content == "" {
		return ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[sessionID]
	if ok && s.expired(e, now) {
		delete(s.sessions, sessionID)
		ok = false
	}
	if !ok {
		if len(s.sessions) >= s.cfg.MaxSessions {
			s.evictOldestLocked()
		}
		e = &entry{createdAt: now}
		s.sessions[sessionID] = e
	}

	e.messages = append(e.messages, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if overflow := len(e.messages) - s.cfg.MaxMessagesPerSession; overflow > 0 {
		e.messages = append(e.messages[:0], e.messages[overflow:]...)
	}
	e.lastAccessed = now

	return nil
}

// History returns a snapshot of the session's messages in conversational
// order, or nil if the session does not exist or has expired. A hit refreshes
// the session's last-access time, so periodically read sessions never expire.
func (s *Store) History(sessionID string) []core.Message {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if s.expired(e, now) {
		delete(s.sessions, sessionID)
		return nil
	}
	e.lastAccessed = now

	out := make([]core.Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// EvictExpired removes every session idle past the TTL and returns the count.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(s.now())
}

// Stats purges expired sessions, then reports counters over what remains.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(s.now())

	total := 0
	for _, e := range s.sessions {
		total += len(e.messages)
	}
	return Stats{
		ActiveSessions:        len(s.sessions),
		TotalMessages:         total,
		MaxSessions:           s.cfg.MaxSessions,
		MaxMessagesPerSession: s.cfg.MaxMessagesPerSession,
		SessionTTLSeconds:     int(s.cfg.TTL / time.Second),
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastAccessed) > s.cfg.TTL
}

func (s *Store) evictExpiredLocked(now time.Time) int {
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// evictOldestLocked removes the session with the oldest last-access time.
// Equal timestamps break toward the lexicographically smaller id so eviction
// stays reproducible.
func (s *Store) evictOldestLocked() {
	var victim string
	var victimAt time.Time
	first := true
	for id, e := range s.sessions {
		switch {
		case first:
			victim, victimAt = id, e.lastAccessed
			first = false
		case e.lastAccessed.Before(victimAt):
			victim, victimAt = id, e.lastAccessed
		case e.lastAccessed.Equal(victimAt) && id < victim:
			victim = id
		}
	}
	if !first {
		delete(s.sessions, victim)
	}
}
