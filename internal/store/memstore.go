package store

import "sync"

// MemStore is an in-memory key-value store with the same Get/Set/Delete
// contract as Store. Used by tests and when no database path is available.
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// GetErr and SetErr, when non-nil, are returned by every Get/Set call.
	GetErr error
	SetErr error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or ErrNotFound.
func (m *MemStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
