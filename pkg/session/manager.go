package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/settings"
)

// Manager creates and tracks sessions. All sessions share one settings
// store, one engine, and one event bus; they never share mutable run state
// with each other.
type Manager struct {
	store  *settings.Store
	eng    engine.Engine
	events *EventBus

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager ready for use.
func NewManager(store *settings.Store, eng engine.Engine) *Manager {
	return &Manager{
		store:    store,
		eng:      eng,
		events:   NewEventBus(),
		sessions: make(map[string]*Session),
	}
}

// Events returns the shared event bus. Events carry the originating
// session's id.
func (m *Manager) Events() *EventBus { return m.events }

// Open creates a new session with a generated id.
func (m *Manager) Open() *Session {
	id := "session-" + uuid.NewString()
	s := newSession(id, m.store, m.eng, m.events)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s
}

// Session returns an existing session by id.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session, cancelling any run still in flight. Session
// state is never persisted, so closing loses it.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Cancel()
	}
}
