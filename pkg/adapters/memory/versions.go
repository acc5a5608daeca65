package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// VersionStore implements ports.VersionStore in memory.
type VersionStore struct {
	mu       sync.RWMutex
	versions map[string][]domain.Version
}

// NewVersionStore creates an empty version store.
func NewVersionStore() *VersionStore {
	return &VersionStore{versions: make(map[string][]domain.Version)}
}

func (s *VersionStore) ListVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.versions[projectID]
	out := make([]domain.Version, len(list))
	for i, v := range list {
		out[i] = v.Clone()
	}
	return out, nil
}

// CreateVersion appends v. An existing id is replaced in place.
func (s *VersionStore) CreateVersion(ctx context.Context, v domain.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.versions[v.ProjectID]
	for i := range list {
		if list[i].ID == v.ID {
			list[i] = v.Clone()
			return nil
		}
	}
	s.versions[v.ProjectID] = append(list, v.Clone())
	return nil
}

func (s *VersionStore) LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions[projectID] {
		if v.ID == versionID {
			return v.Clone(), nil
		}
	}
	return domain.Version{}, domain.ErrVersionNotFound
}

func (s *VersionStore) Publish(ctx context.Context, projectID, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.versions[projectID]
	for i := range list {
		if list[i].ID == versionID {
			list[i].IsPublished = true
			return nil
		}
	}
	return domain.ErrVersionNotFound
}

func (s *VersionStore) DeleteVersion(ctx context.Context, projectID, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.versions[projectID]
	for i := range list {
		if list[i].ID == versionID {
			s.versions[projectID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}
