package service

import (
	"errors"
	"sync"

	"circuitee/internal/common/metrics"
	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/share"
	"circuitee/internal/storage"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// ============================================================
// Session
// ============================================================

// Session is one live design. Its mutex makes every command run to completion
// before the next one starts.
type Session struct {
	ID string

	mu        sync.Mutex
	engine    *engine.Engine
	persister *share.Persister
}

// Do runs fn with exclusive access to the engine.
func (s *Session) Do(fn func(e *engine.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// Blob returns the latest persisted share blob, persisting the current design
// first if nothing has been persisted yet.
func (s *Session) Blob() (string, error) {
	if blob := s.persister.Blob(); blob != "" {
		return blob, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persister.Persist(s.engine.Design()); err != nil {
		return "", err
	}
	return s.persister.Blob(), nil
}

// FloorPlanKey is the store key holding this session's floor plan.
func (s *Session) FloorPlanKey() string {
	return s.persister.Key()
}

// ============================================================
// Session Manager
// ============================================================

type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session // id -> session

	kv           storage.KV
	metrics      *metrics.Registry
	historyLimit int
}

func NewSessionManager(kv storage.KV, m *metrics.Registry, historyLimit int) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		kv:           kv,
		metrics:      m,
		historyLimit: historyLimit,
	}
}

// Create starts a session, optionally seeded with a loaded design.
func (m *SessionManager) Create(design *models.Design) (*Session, error) {
	id := uuid.NewString()
	persister := share.NewPersister(m.kv, m.metrics, id)
	eng := engine.New(engine.Options{
		HistoryLimit: m.historyLimit,
		Persister:    persister,
		Metrics:      m.metrics,
	})
	if design != nil {
		if err := eng.Load(*design); err != nil {
			return nil, err
		}
	}

	s := &Session{
		ID:        id,
		engine:    eng,
		persister: persister,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.observe(count)
	return s, nil
}

func (m *SessionManager) Resolve(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	m.observe(count)
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) observe(count int) {
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(count))
	}
}
