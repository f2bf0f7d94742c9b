package tokenstore

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu    sync.RWMutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Memory) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *Memory) ClearIf(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == token {
		m.token = ""
	}
	return nil
}

// MemoryFactory keeps per-session tokens in process. It is used when no
// Redis is configured and in tests. Like the Redis store, an entry exists
// only between Save and Clear and expires with its token.
type MemoryFactory struct {
	maxTTL time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// sweepEvery bounds how often Save scans for expired entries.
const sweepEvery = time.Minute

// NewMemoryFactory creates an in-process factory. maxTTL bounds how long a
// token is kept, as in NewRedisFactory; zero keeps tokens until their exp.
func NewMemoryFactory(maxTTL time.Duration) *MemoryFactory {
	return &MemoryFactory{
		maxTTL:  maxTTL,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (f *MemoryFactory) Scope(sessionID string) Store {
	return &memoryScope{f: f, id: sessionID}
}

// Len reports how many sessions currently hold a live token.
func (f *MemoryFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweep(f.now())
	return len(f.entries)
}

// sweep drops expired entries. Callers hold mu.
func (f *MemoryFactory) sweep(now time.Time) {
	for id, e := range f.entries {
		if e.expired(now) {
			delete(f.entries, id)
		}
	}
	f.lastSweep = now
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type memoryScope struct {
	f  *MemoryFactory
	id string
}

func (s *memoryScope) Load(ctx context.Context) (string, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	e, ok := s.f.entries[s.id]
	if !ok {
		return "", nil
	}
	if e.expired(s.f.now()) {
		delete(s.f.entries, s.id)
		return "", nil
	}
	return e.token, nil
}

func (s *memoryScope) Save(ctx context.Context, token string) error {
	ttl, err := lifetime(token, s.f.maxTTL)
	if err != nil {
		return err
	}

	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	now := s.f.now()
	if now.Sub(s.f.lastSweep) >= sweepEvery {
		s.f.sweep(now)
	}
	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	s.f.entries[s.id] = e
	return nil
}

func (s *memoryScope) Clear(ctx context.Context) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	delete(s.f.entries, s.id)
	return nil
}

func (s *memoryScope) ClearIf(ctx context.Context, token string) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if e, ok := s.f.entries[s.id]; ok && e.token == token {
		delete(s.f.entries, s.id)
	}
	return nil
}
