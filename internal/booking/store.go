package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an untouched booking session is kept.
const DefaultSessionTTL = 30 * time.Minute

const lockPollInterval = 20 * time.Millisecond

// Store persists booking sessions and serializes mutations of one session.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Lock acquires the session's mutation lock, polling for up to wait.
	// It returns ErrSessionBusy when the lock is still held after wait.
	Lock(ctx context.Context, id string, wait time.Duration) (unlock func(), err error)
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process. Sessions are stored encoded so
// callers never share a *Session.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	locks    map[string]struct{}
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]struct{}),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok && !e.expires.After(m.now()) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Lock(ctx context.Context, id string, wait time.Duration) (func(), error) {
	return pollLock(ctx, wait, func() (func(), bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, held := m.locks[id]; held {
			return nil, false, nil
		}
		m.locks[id] = struct{}{}
		return func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		}, true, nil
	})
}

// pollLock retries try until it acquires, wait elapses or ctx is done.
func pollLock(ctx context.Context, wait time.Duration, try func() (func(), bool, error)) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		unlock, ok, err := try()
		if err != nil {
			return nil, err
		}
		if ok {
			return unlock, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrSessionBusy
		}

		select {
		case <-ctx.Done():
			return nil, ErrSessionBusy.WithCause(ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}
