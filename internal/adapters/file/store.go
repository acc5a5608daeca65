package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

const ext = ".json"

// Store implements ports.ProjectStore and ports.VersionStore on the local
// filesystem. Projects live in <base>/projects/<id>.json and versions in
// <base>/versions/<projectID>/<versionID>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".pagecraft/data".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".pagecraft", "data")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) projectsDir() string {
	return filepath.Join(s.BasePath, "projects")
}

func (s *Store) versionsDir(projectID string) string {
	return filepath.Join(s.BasePath, "versions", projectID)
}

// Save persists the project to a JSON file atomically.
func (s *Store) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	if err := checkID("projectID", projectID); err != nil {
		return err
	}
	return writeJSON(s.projectsDir(), projectID, data)
}

// Load retrieves the project from its JSON file.
func (s *Store) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	if err := checkID("projectID", projectID); err != nil {
		return nil, err
	}

	var data domain.ProjectData
	if err := readJSON(filepath.Join(s.projectsDir(), projectID+ext), &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &data, nil
}

// Delete removes the project file. Its versions are kept.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	if err := checkID("projectID", projectID); err != nil {
		return err
	}
	return remove(filepath.Join(s.projectsDir(), projectID+ext))
}

// List returns the ids of all stored projects.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := listIDs(s.projectsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return ids, nil
}

// ListVersions returns the versions of a project ordered by creation time.
func (s *Store) ListVersions(ctx context.Context, projectID string) ([]domain.Version, error) {
	if err := checkID("projectID", projectID); err != nil {
		return nil, err
	}
	ids, err := listIDs(s.versionsDir(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	out := make([]domain.Version, 0, len(ids))
	for _, id := range ids {
		v, err := s.LoadVersion(ctx, projectID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateVersion writes v. An existing version with the same id is replaced.
func (s *Store) CreateVersion(ctx context.Context, v domain.Version) error {
	if err := checkID("projectID", v.ProjectID); err != nil {
		return err
	}
	if err := checkID("versionID", v.ID); err != nil {
		return err
	}
	return writeJSON(s.versionsDir(v.ProjectID), v.ID, v)
}

// LoadVersion returns one version.
func (s *Store) LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	if err := checkID("projectID", projectID); err != nil {
		return domain.Version{}, err
	}
	if err := checkID("versionID", versionID); err != nil {
		return domain.Version{}, err
	}

	var v domain.Version
	if err := readJSON(filepath.Join(s.versionsDir(projectID), versionID+ext), &v); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Version{}, domain.ErrVersionNotFound
		}
		return domain.Version{}, err
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

// DeleteVersion removes a version file.
func (s *Store) DeleteVersion(ctx context.Context, projectID, versionID string) error {
	if err := checkID("projectID", projectID); err != nil {
		return err
	}
	if err := checkID("versionID", versionID); err != nil {
		return err
	}
	return remove(filepath.Join(s.versionsDir(projectID), versionID+ext))
}

func checkID(name, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%s %q is not a valid file name", name, id)
	}
	return nil
}

// writeJSON writes v to dir/id.json atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func writeJSON(dir, id string, v any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	destPath := filepath.Join(dir, id+ext)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+id+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", filepath.Base(path), err)
	}
	return nil
}

func listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
