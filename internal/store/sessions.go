package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Sessions holds one MemoryKV per browser session. Idle sessions expire after the TTL
// and the least recently used ones are evicted past the size bound, the same lifetime a
// browser gives sessionStorage when a tab goes away.
type Sessions struct {
	lru *expirable.LRU[string, *MemoryKV]
}

func NewSessions(size int, ttl time.Duration) *Sessions {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{lru: expirable.NewLRU[string, *MemoryKV](size, nil, ttl)}
}

// Get returns the session's store, creating an empty one on first use.
func (s *Sessions) Get(id string) *MemoryKV {
	if kv, ok := s.lru.Get(id); ok {
		return kv
	}
	kv := NewMemoryKV()
	s.lru.Add(id, kv)
	return kv
}

// Has reports whether id is a live session.
func (s *Sessions) Has(id string) bool {
	return s.lru.Contains(id)
}

// Each calls fn for every live session.
func (s *Sessions) Each(fn func(id string, kv *MemoryKV)) {
	for _, id := range s.lru.Keys() {
		if kv, ok := s.lru.Peek(id); ok {
			fn(id, kv)
		}
	}
}

func (s *Sessions) Len() int { return s.lru.Len() }
