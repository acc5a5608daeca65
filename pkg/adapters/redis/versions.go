package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/pagecraft/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ListVersions returns the versions of a project in creation order.
func (s *Store) ListVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	fields, err := s.client.HGetAll(ctx, s.versionsKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	out := make([]domain.Version, 0, len(fields))
	for id, raw := range fields {
		var v domain.Version
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal version %s: %w", id, err)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateVersion stores v under its project hash.
func (s *Store) CreateVersion(ctx context.Context, v domain.Version) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}
	if err := s.client.HSet(ctx, s.versionsKey(v.ProjectID), v.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}
	return nil
}

// LoadVersion returns one version.
func (s *Store) LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	raw, err := s.client.HGet(ctx, s.versionsKey(projectID), versionID).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Version{}, domain.ErrVersionNotFound
		}
		return domain.Version{}, fmt.Errorf("failed to get version: %w", err)
	}

	var v domain.Version
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Version{}, fmt.Errorf("failed to unmarshal version: %w", err)
	}
	return v, nil
}

// Publish marks a version as published.
func (s *Store) Publish(ctx context.Context, projectID, versionID string) error {
	v, err := s.LoadVersion(ctx, projectID, versionID)
	if err != nil {
		return err
	}
	v.IsPublished = true
	return s.CreateVersion(ctx, v)
}

// DeleteVersion removes a version.
func (s *Store) DeleteVersion(ctx context.Context, projectID, versionID string) error {
	return s.client.HDel(ctx, s.versionsKey(projectID), versionID).Err()
}
