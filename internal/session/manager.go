package session

import (
	"fmt"
	"sync"
)

// Factory builds a session for a document id. The wiring layer supplies
// it so the manager stays free of storage and transport concerns.
type Factory func(docID string) (*Session, error)

// Manager tracks the open editing sessions, one per document id.
type Manager struct {
	mu       sync.Mutex
	factory  Factory
	sessions map[string]*Session
}

// NewManager creates an empty manager.
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for docID, creating it on first use.
func (m *Manager) Get(docID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[docID]; ok {
		return s, nil
	}
	s, err := m.factory(docID)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", docID, err)
	}
	m.sessions[docID] = s
	return s, nil
}

// Peek returns the session for docID without creating one.
func (m *Manager) Peek(docID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[docID]
	return s, ok
}

// Close drops the session for docID. The next Get rebuilds it.
func (m *Manager) Close(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, docID)
}

// LocalTargets returns the set of local file targets currently mirrored
// by open sessions, for the watcher to keep directories under watch.
func (m *Manager) LocalTargets() map[string][]*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]*Session)
	for _, s := range m.sessions {
		if t := s.LocalTarget(); t != "" {
			out[t] = append(out[t], s)
		}
	}
	return out
}
