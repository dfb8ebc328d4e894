package offline

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
)

// ErrNotCacheable is returned when a non-GET request is put into a store.
var ErrNotCacheable = errors.New("only GET requests can be cached")

// Storage is the set of named cache stores of one origin.
type Storage interface {
	// Open returns the named store, creating it if needed.
	Open(ctx context.Context, name string) (Store, error)
	// Keys lists store names in creation order.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes the named store and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Store maps GET requests to response snapshots.
type Store interface {
	Match(ctx context.Context, req *Request) (*Response, bool, error)
	Put(ctx context.Context, req *Request, resp *Response) error
}

// MemoryStorage keeps stores in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	names  []string
	stores map[string]*memoryStore
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stores: make(map[string]*memoryStore)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[name]; ok {
		return st, nil
	}
	st := &memoryStore{entries: make(map[string]*Response)}
	s.stores[name] = st
	s.names = append(s.names, name)
	return st, nil
}

func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.names), nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stores[name]; !ok {
		return false, nil
	}
	delete(s.stores, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true, nil
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Response
}

func (m *memoryStore) Match(_ context.Context, req *Request) (*Response, bool, error) {
	if req.Method != http.MethodGet {
		return nil, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.entries[req.CacheKey()]
	if !ok {
		return nil, false, nil
	}
	return resp.Clone(), true, nil
}

func (m *memoryStore) Put(_ context.Context, req *Request, resp *Response) error {
	if req.Method != http.MethodGet {
		return ErrNotCacheable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[req.CacheKey()] = resp.Clone()
	return nil
}
