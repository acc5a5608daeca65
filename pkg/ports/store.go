package ports

import (
	"context"
	"io"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// ProjectStore persists project payloads.
// Saving the same snapshot twice must be harmless.
type ProjectStore interface {
	// Load returns the project. Returns domain.ErrProjectNotFound if it does not exist.
	Load(ctx context.Context, projectID string) (*domain.ProjectData, error)

	// Save writes the full project payload.
	Save(ctx context.Context, projectID string, data *domain.ProjectData) error

	// Delete removes the project. Deleting a missing project is not an error.
	Delete(ctx context.Context, projectID string) error

	// List returns the ids of stored projects.
	List(ctx context.Context) ([]string, error)
}

// VersionStore persists project version snapshots.
type VersionStore interface {
	// ListVersions returns the versions of a project in creation order.
	ListVersions(ctx context.Context, projectID string) ([]domain.Version, error)

	// CreateVersion stores v. v.ID and v.ProjectID must be set.
	CreateVersion(ctx context.Context, v domain.Version) error

	// LoadVersion returns one version. Returns domain.ErrVersionNotFound if missing.
	LoadVersion(ctx context.Context, projectID, versionID string) (domain.Version, error)

	// Publish marks a version as published.
	Publish(ctx context.Context, projectID, versionID string) error

	// DeleteVersion removes a version.
	DeleteVersion(ctx context.Context, projectID, versionID string) error
}

// Catalog is the block palette.
type Catalog interface {
	Items(ctx context.Context) ([]domain.CatalogItem, error)
	// Item returns domain.ErrNotFound for unknown ids.
	Item(ctx context.Context, id string) (domain.CatalogItem, error)
}

// AssetStore holds uploaded files referenced by block content.
type AssetStore interface {
	// Put stores the content under a generated key derived from name.
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	// Get returns domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
