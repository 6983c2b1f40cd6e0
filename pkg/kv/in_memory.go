package kv

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	lock   *sync.RWMutex
	values map[Namespace]map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{lock: new(sync.RWMutex)}
}

func (s *InMemoryStore) Get(ctx context.Context, ns Namespace, key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.values[ns][key], nil
}

func (s *InMemoryStore) Set(ctx context.Context, ns Namespace, key string, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.values == nil {
		s.values = make(map[Namespace]map[string]string)
	}

	nsMap := s.values[ns]
	if nsMap == nil {
		nsMap = make(map[string]string)
		s.values[ns] = nsMap
	}

	nsMap[key] = value
	return nil
}
