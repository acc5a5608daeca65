package versions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
)

// Service creates, lists and restores versions of stored projects.
type Service struct {
	projects ports.ProjectStore
	versions ports.VersionStore
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides the version id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service over the two stores.
func NewService(projects ports.ProjectStore, versions ports.VersionStore, opts ...Option) *Service {
	s := &Service{
		projects: projects,
		versions: versions,
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest describes a new snapshot. An empty Version is generated with NextTag.
type CreateRequest struct {
	Version     string `json:"version,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
}

// List returns the versions of a project, newest first.
func (s *Service) List(ctx context.Context, projectID string) ([]domain.Version, error) {
	list, err := s.versions.ListVersions(ctx, projectID)
	if err != nil {
		return nil, s.fail("list_versions", projectID, err)
	}
	return SortByDate(list), nil
}

// Create snapshots the stored project.
func (s *Service) Create(ctx context.Context, projectID string, req CreateRequest) (domain.Version, error) {
	data, err := s.projects.Load(ctx, projectID)
	if err != nil {
		return domain.Version{}, s.fail("create_version", projectID, err)
	}
	return s.Snapshot(ctx, projectID, data, req)
}

// Snapshot stores data as a new version. Use it to version unsaved session state.
func (s *Service) Snapshot(ctx context.Context, projectID string, data *domain.ProjectData, req CreateRequest) (domain.Version, error) {
	existing, err := s.versions.ListVersions(ctx, projectID)
	if err != nil {
		return domain.Version{}, s.fail("create_version", projectID, err)
	}

	v := domain.Version{
		ID:          s.newID(),
		ProjectID:   projectID,
		Version:     req.Version,
		Tag:         req.Tag,
		Description: req.Description,
		Author:      req.Author,
		CreatedAt:   s.now(),
		Data:        data.Clone(),
	}
	if v.Version == "" {
		v.Version = NextTag(existing)
	}
	if err := Validate(v); err != nil {
		return domain.Version{}, fmt.Errorf("create version: %w", err)
	}
	if err := s.versions.CreateVersion(ctx, v); err != nil {
		return domain.Version{}, s.fail("create_version", projectID, err)
	}
	s.logger.Info("version created", "project_id", projectID, "version", v.Version, "version_id", v.ID)
	return v, nil
}

// Load returns one version.
func (s *Service) Load(ctx context.Context, projectID, versionID string) (domain.Version, error) {
	v, err := s.versions.LoadVersion(ctx, projectID, versionID)
	if err != nil {
		return domain.Version{}, s.fail("load_version", projectID, err)
	}
	return v, nil
}

// Rollback writes the data of a version back as the current project and
// returns it so an open session can adopt it.
func (s *Service) Rollback(ctx context.Context, projectID, versionID string) (*domain.ProjectData, error) {
	v, err := s.Load(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}
	if v.Data == nil {
		return nil, s.fail("rollback", projectID, errDataRequired)
	}
	if err := s.projects.Save(ctx, projectID, v.Data); err != nil {
		return nil, s.fail("rollback", projectID, err)
	}
	s.logger.Info("project rolled back", "project_id", projectID, "version", v.Version)
	return v.Data.Clone(), nil
}

// Publish marks a version as published.
func (s *Service) Publish(ctx context.Context, projectID, versionID string) error {
	if err := s.versions.Publish(ctx, projectID, versionID); err != nil {
		return s.fail("publish", projectID, err)
	}
	return nil
}

// Current returns the current version of a project.
func (s *Service) Current(ctx context.Context, projectID string) (domain.Version, error) {
	list, err := s.versions.ListVersions(ctx, projectID)
	if err != nil {
		return domain.Version{}, s.fail("list_versions", projectID, err)
	}
	v, ok := Current(list)
	if !ok {
		return domain.Version{}, domain.ErrVersionNotFound
	}
	return v, nil
}

// fail wraps backend errors. Not-found sentinels pass through unwrapped so
// callers can tell a missing object from a broken store.
func (s *Service) fail(op, projectID string, err error) error {
	if errors.Is(err, domain.ErrVersionNotFound) || errors.Is(err, domain.ErrProjectNotFound) {
		return fmt.Errorf("%s %s: %w", op, projectID, err)
	}
	s.logger.Error("version operation failed", "project_id", projectID, "op", op, "err", err)
	return &domain.PersistenceError{Op: op, ProjectID: projectID, Err: err}
}
