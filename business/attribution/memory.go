package attribution

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. It backs tests and the degraded mode
// where Redis is unavailable at startup.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]Entry),
	}
}

func (m *MemoryStore) Put(_ context.Context, sessionID, itemID string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.sessions[sessionID]
	if !ok {
		items = make(map[string]Entry)
		m.sessions[sessionID] = items
	}
	items[itemID] = entry

	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID, itemID string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, ok := m.sessions[sessionID]
	if !ok {
		return Entry{}, false, nil
	}
	entry, ok := items[itemID]
	return entry, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if items, ok := m.sessions[sessionID]; ok {
		delete(items, itemID)
		if len(items) == 0 {
			delete(m.sessions, sessionID)
		}
	}

	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)

	return nil
}
