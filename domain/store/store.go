package store

import (
	"context"
	"sync"
)

// LinkStore keeps the links of pages already fetched.
type LinkStore interface {
	Get(ctx context.Context, node string) ([]string, bool, error)
	Put(ctx context.Context, node string, links []string) error
}

// MemoryStore is a LinkStore living in the process.
type MemoryStore struct {
	links   map[string][]string
	rwMutex sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:   make(map[string][]string),
		rwMutex: sync.RWMutex{},
	}
}

func (s *MemoryStore) Put(ctx context.Context, node string, links []string) error {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()
	s.links[node] = append([]string(nil), links...)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, node string) ([]string, bool, error) {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()
	links, ok := s.links[node]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), links...), true, nil
}
