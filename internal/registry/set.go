package registry

import (
	"context"
	"sync"
)

// SetStore es el registro base: un conjunto en memoria que crece monótonamente.
type SetStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSet crea un SetStore vacío.
func NewSet() *SetStore {
	return &SetStore{seen: make(map[string]struct{})}
}

func (s *SetStore) CheckAndRecord(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen == nil {
		return false, ErrClosed
	}
	if _, ok := s.seen[id]; ok {
		return false, nil
	}
	s.seen[id] = struct{}{}
	return true, nil
}

func (s *SetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *SetStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		return ErrClosed
	}
	return nil
}

func (s *SetStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = nil
	return nil
}
