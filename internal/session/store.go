package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/metrics"
)

// Store errors.
var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrStoreFull is returned when MaxSessions live sessions already exist.
	ErrStoreFull = errors.New("session limit reached")
)

// StoreConfig holds configuration for the session store.
type StoreConfig struct {
	// Session is passed to every session the store creates.
	Session Config

	// IdleTTL is how long an untouched session survives (default: 30 minutes).
	IdleTTL time.Duration

	// CleanupInterval is how often expired sessions are swept (default: 5 minutes).
	CleanupInterval time.Duration

	// MaxSessions bounds live sessions (default: 10000).
	MaxSessions int

	// Metrics receives the live session count (optional).
	Metrics *metrics.Metrics

	// Logger for store operations.
	Logger zerolog.Logger

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Store keeps sessions in memory. Sessions expire after IdleTTL without a
// Create or Get; there is no persistence and no history.
type Store struct {
	cfg             Config
	idleTTL         time.Duration
	cleanupInterval time.Duration
	maxSessions     int
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	now             func() time.Time

	mu          sync.Mutex
	sessions    map[string]*storedSession
	lastCleanup time.Time
}

type storedSession struct {
	session  *Session
	lastUsed time.Time
}

// NewStore creates a new session store.
func NewStore(cfg StoreConfig) *Store {
	idleTTL := cfg.IdleTTL
	if idleTTL == 0 {
		idleTTL = 30 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 10000
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	sessionCfg := cfg.Session
	if sessionCfg.Metrics == nil {
		sessionCfg.Metrics = cfg.Metrics
	}

	return &Store{
		cfg:             sessionCfg.withDefaults(),
		idleTTL:         idleTTL,
		cleanupInterval: cleanupInterval,
		maxSessions:     maxSessions,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		now:             now,
		sessions:        make(map[string]*storedSession),
		lastCleanup:     now(),
	}
}

// Create starts a new session with a random ID.
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupIfNeeded()
	if len(s.sessions) >= s.maxSessions {
		// A full store sweeps regardless of the interval before refusing.
		s.cleanup(s.now())
		if len(s.sessions) >= s.maxSessions {
			return nil, ErrStoreFull
		}
	}

	id := uuid.NewString()
	session := New(id, s.cfg)
	s.sessions[id] = &storedSession{session: session, lastUsed: s.now()}
	s.metrics.SetActiveSessions(len(s.sessions))

	s.logger.Debug().
		Str("session_id", id).
		Int("active_sessions", len(s.sessions)).
		Msg("session created")

	return session, nil
}

// Get returns a live session and marks it used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupIfNeeded()

	stored, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if s.expired(stored, now) {
		s.remove(id, stored)
		return nil, ErrNotFound
	}
	stored.lastUsed = now
	return stored.session, nil
}

// Delete ends a session and cancels its in-flight submission.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.remove(id, stored)
	return nil
}

// Len returns the number of sessions held, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close ends every session.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, stored := range s.sessions {
		s.remove(id, stored)
	}
}

func (s *Store) expired(stored *storedSession, now time.Time) bool {
	return now.Sub(stored.lastUsed) >= s.idleTTL
}

func (s *Store) remove(id string, stored *storedSession) {
	stored.session.Close()
	delete(s.sessions, id)
	s.metrics.SetActiveSessions(len(s.sessions))
}

// cleanupIfNeeded sweeps expired sessions once per cleanup interval.
func (s *Store) cleanupIfNeeded() {
	now := s.now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.cleanup(now)
}

func (s *Store) cleanup(now time.Time) {
	s.lastCleanup = now
	expired := 0

	for id, stored := range s.sessions {
		if s.expired(stored, now) {
			s.remove(id, stored)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_sessions", expired).
			Int("active_sessions", len(s.sessions)).
			Msg("cleaned up idle sessions")
	}
}
