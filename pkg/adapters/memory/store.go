package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Store implements ports.ProjectStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ProjectData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ProjectData),
	}
}

// Save stores a deep copy of data.
func (s *Store) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	c := data.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[projectID] = c
	return nil
}

// Load returns a copy so callers cannot mutate the stored project.
func (s *Store) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return data.Clone(), nil
}

// Delete removes the project.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, projectID)
	return nil
}

// List returns stored project ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
