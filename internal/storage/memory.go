package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/tatianab/llmserver/internal/models"
)

// MemoryStore keeps snapshots in process memory. Useful for tests and for
// running without durability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Context
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.Context)}
}

func (s *MemoryStore) Save(_ context.Context, c *models.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[c.Name] = c.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, name string) (*models.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]*models.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Context, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
