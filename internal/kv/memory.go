package kv

import "sync"

var _ Storage = (*Memory)(nil)

// Memory is an in-memory Storage. Tests use the failure hooks to simulate
// an unreadable area or a rejected write.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// GetErr, when set, is consulted before every read.
	GetErr func(key string) error
	// SetErr, when set, is consulted before every write.
	SetErr func(key string) error
}

// NewMemory creates an empty in-memory storage area.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		if err := m.GetErr(key); err != nil {
			return "", false, err
		}
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		if err := m.SetErr(key); err != nil {
			return err
		}
	}
	m.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		if err := m.SetErr(key); err != nil {
			return err
		}
	}
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
