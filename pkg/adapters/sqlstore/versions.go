package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
)

const versionColumns = "id, project_id, version, tag, description, author, created_at, is_published, data"

// ListVersions returns the versions of a project in creation order.
func (s *Store) ListVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	q := s.d.rebind("SELECT " + versionColumns + " FROM pagecraft_versions WHERE project_id = ? ORDER BY created_at, id")
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	out := []domain.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateVersion stores v, replacing a version with the same id.
func (s *Store) CreateVersion(ctx context.Context, v domain.Version) error {
	raw, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal version data: %w", err)
	}
	q := s.d.upsert("pagecraft_versions",
		[]string{"project_id", "id"},
		[]string{"version", "tag", "description", "author", "created_at", "is_published", "data"})
	_, err = s.db.ExecContext(ctx, q,
		v.ProjectID, v.ID, v.Version, v.Tag, v.Description, v.Author,
		v.CreatedAt.UnixNano(), v.IsPublished, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}
	return nil
}

// LoadVersion returns one version.
func (s *Store) LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	q := s.d.rebind("SELECT " + versionColumns + " FROM pagecraft_versions WHERE project_id = ? AND id = ?")
	v, err := scanVersion(s.db.QueryRowContext(ctx, q, projectID, versionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Version{}, domain.ErrVersionNotFound
		}
		return domain.Version{}, err
	}
	return v, nil
}

// Publish marks a version as published.
func (s *Store) Publish(ctx context.Context, projectID, versionID string) error {
	// MySQL reports zero affected rows for unchanged values, so check first.
	if _, err := s.LoadVersion(ctx, projectID, versionID); err != nil {
		return err
	}
	q := s.d.rebind("UPDATE pagecraft_versions SET is_published = ? WHERE project_id = ? AND id = ?")
	if _, err := s.db.ExecContext(ctx, q, true, projectID, versionID); err != nil {
		return fmt.Errorf("failed to publish version: %w", err)
	}
	return nil
}

// DeleteVersion removes a version.
func (s *Store) DeleteVersion(ctx context.Context, projectID, versionID string) error {
	q := s.d.rebind("DELETE FROM pagecraft_versions WHERE project_id = ? AND id = ?")
	if _, err := s.db.ExecContext(ctx, q, projectID, versionID); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner) (domain.Version, error) {
	var (
		v       domain.Version
		created int64
		raw     string
	)
	if err := row.Scan(&v.ID, &v.ProjectID, &v.Version, &v.Tag, &v.Description, &v.Author, &created, &v.IsPublished, &raw); err != nil {
		return domain.Version{}, err
	}
	v.CreatedAt = time.Unix(0, created).UTC()
	if raw != "" && raw != "null" {
		v.Data = &domain.ProjectData{}
		if err := json.Unmarshal([]byte(raw), v.Data); err != nil {
			return domain.Version{}, fmt.Errorf("failed to unmarshal version data: %w", err)
		}
	}
	return v, nil
}
