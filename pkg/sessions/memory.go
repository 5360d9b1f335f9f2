package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule is the cron expression of the expired session sweep.
const DefaultSweepSchedule = "@every 1m"

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are stored encoded so
// callers never share state with the store.
type MemoryStore struct {
	logger   *slog.Logger
	ttl      time.Duration
	schedule string
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
	cron    *cron.Cron
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL sets how long an untouched session lives.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithSweepSchedule sets the cron expression of the expired session sweep.
func WithSweepSchedule(schedule string) MemoryOption {
	return func(s *MemoryStore) {
		s.schedule = schedule
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a store and starts its sweep job.
func NewMemoryStore(logger *slog.Logger, opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{
		logger:   logger.With("module", "memory_session_store"),
		ttl:      DefaultTTL,
		schedule: DefaultSweepSchedule,
		now:      time.Now,
		entries:  make(map[string]memoryEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, func() { s.Sweep() })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()

	return s, nil
}

func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[session.ID]; ok && s.now().Before(entry.expiresAt) {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	s.entries[session.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}

	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(id)
	if err != nil {
		return nil, err
	}

	return decodeSession(entry.data)
}

func (s *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.live(id)
	if err != nil {
		return nil, err
	}

	session, err := decodeSession(entry.data)
	if err != nil {
		return nil, err
	}

	err = fn(session)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session %s: %w", id, err)
	}

	s.entries[id] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}

	return session, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.live(id); err != nil {
		return err
	}

	delete(s.entries, id)

	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Swept expired editing sessions", "count", removed)
	}

	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	<-s.cron.Stop().Done()

	return nil
}

// live must be called with the lock held.
func (s *MemoryStore) live(id string) (memoryEntry, error) {
	entry, ok := s.entries[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		return memoryEntry{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return entry, nil
}

func decodeSession(data []byte) (*Session, error) {
	var session Session

	err := json.Unmarshal(data, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.Graph != nil {
		session.Graph.SeedCounters()
	}

	return &session, nil
}
