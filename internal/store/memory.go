package store

import "sync"

// MemoryKV is a process-local KV, used for session state.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string]string{}}
}

func (s *MemoryKV) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok, nil
}

func (s *MemoryKV) SetItem(key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryKV) RemoveItem(key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Clear drops every key.
func (s *MemoryKV) Clear() {
	s.mu.Lock()
	s.m = map[string]string{}
	s.mu.Unlock()
}
