package scenario

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Scenario
	order []string
}

func NewInMemoryStore() Store {
	return &memoryStore{byID: map[string]Scenario{}}
}

func (m *memoryStore) Put(_ context.Context, s Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	s.Config = s.Config.Clone()
	m.byID[s.ID] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	if !ok {
		return Scenario{}, ErrNotFound
	}
	s.Config = s.Config.Clone()
	return s, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Summary{}
	for i, id := range m.order {
		if i < opts.Offset {
			continue
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, m.byID[id].Summary())
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
