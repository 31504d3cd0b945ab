package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wiring-animator/backend/internal/config"
	"github.com/wiring-animator/backend/internal/store"
)

// MaxSessions limits concurrent open albums to keep parsed drawings from
// exhausting memory.
const MaxSessions = 25

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned when the session limit is reached and no
// session is old enough to evict.
var ErrTooManySessions = errors.New("too many open sessions")

// Manager owns the open album sessions. Every mutating call on a session's
// components goes through WithSession, which serializes access per manager;
// the album components themselves are single-author by design.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*AlbumSession

	ws      *store.Workspace
	index   *store.AlbumIndex
	conv    *config.Conventions
	timeout time.Duration
}

// NewManager creates a session manager over the given stores.
func NewManager(ws *store.Workspace, index *store.AlbumIndex, conv *config.Conventions, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*AlbumSession),
		ws:       ws,
		index:    index,
		conv:     conv,
		timeout:  timeout,
	}
}

// OpenAlbum opens an album into a new session, taking the album's author
// lock. A relabeled drawing is persisted back immediately so the assigned
// ids survive a crash of the session.
func (m *Manager) OpenAlbum(customer, title string) (*AlbumSession, error) {
	m.evictExpired()

	m.mu.RLock()
	count := len(m.sessions)
	m.mu.RUnlock()
	if count >= MaxSessions {
		return nil, ErrTooManySessions
	}

	album, err := m.index.Get(customer, title)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	if err := m.index.Lock(customer, title, id); err != nil {
		return nil, err
	}

	s, err := openAlbum(id, album, m.ws, m.conv)
	if err != nil {
		m.index.Unlock(customer, title, id)
		return nil, err
	}

	if s.DrawingDirty {
		if err := s.SaveDrawing(m.ws); err != nil {
			m.index.Unlock(customer, title, id)
			return nil, fmt.Errorf("persisting labeled drawing: %w", err)
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Session returns an open session by id, refreshing its keep-alive. The
// returned session's mutable components must only be touched through
// WithSession; this lookup holds no lock beyond the map read.
func (m *Manager) Session(id string) (*AlbumSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.Touch()
	return s, nil
}

// WithSession runs fn with the session under the manager's write lock,
// serializing concurrent HTTP handlers touching the same album state.
func (m *Manager) WithSession(id string, fn func(*AlbumSession) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	s.Touch()
	return fn(s)
}

// Workspace returns the file store sessions persist through.
func (m *Manager) Workspace() *store.Workspace { return m.ws }

// AlbumIndex returns the album index.
func (m *Manager) AlbumIndex() *store.AlbumIndex { return m.index }

// Conventions returns the drawing conventions in effect.
func (m *Manager) Conventions() *config.Conventions { return m.conv }

// CloseSession releases a session and its album lock. Unsaved in-memory
// edits are discarded; persistence is explicit via the save endpoints.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return m.index.Unlock(s.Album.Customer, s.Album.Title, id)
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictExpired drops sessions idle past the timeout and releases their
// album locks.
func (m *Manager) evictExpired() {
	cutoff := time.Now().Add(-m.timeout)

	m.mu.Lock()
	var expired []*AlbumSession
	for id, s := range m.sessions {
		if s.LastAccessed.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if err := m.index.Unlock(s.Album.Customer, s.Album.Title, s.ID); err != nil {
			log.Printf("session cleanup: unlocking %s: %v", s.Album.Key(), err)
		}
	}
}

// StartCleanup runs periodic eviction of idle sessions until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictExpired()
			}
		}
	}()
}
