package pagecraft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
	"github.com/aretw0/pagecraft/pkg/session"
	"github.com/aretw0/pagecraft/pkg/versions"
)

// Version is the pagecraft release, set at build time with -ldflags.
var Version = "dev"

// Workspace is the high-level entry point for the pagecraft library.
// It ties a project store, a version store, the block catalog and the asset
// store to a session manager that hands out one editor session per project.
type Workspace struct {
	projects ports.ProjectStore
	history  ports.VersionStore
	catalog  ports.Catalog
	assets   ports.AssetStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	logger   *slog.Logger
	hooks    domain.Hooks

	editorOpts []editor.Option
	now        func() time.Time
	newID      func() string

	sessions *session.Manager
	versions *versions.Service
}

// Option defines a functional option for configuring the Workspace.
type Option func(*Workspace)

// WithProjectStore sets the project backend. When it also implements
// ports.VersionStore it backs versions too, unless WithVersionStore is given.
func WithProjectStore(store ports.ProjectStore) Option {
	return func(w *Workspace) { w.projects = store }
}

// WithVersionStore sets the version backend.
func WithVersionStore(store ports.VersionStore) Option {
	return func(w *Workspace) { w.history = store }
}

// WithCatalog sets the block palette.
func WithCatalog(c ports.Catalog) Option {
	return func(w *Workspace) { w.catalog = c }
}

// WithAssets sets the upload store.
func WithAssets(a ports.AssetStore) Option {
	return func(w *Workspace) { w.assets = a }
}

// WithLocker coordinates project access across replicas.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(w *Workspace) {
		w.locker = l
		w.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) { w.logger = logger }
}

// WithHooks registers observability hooks on every session.
func WithHooks(h domain.Hooks) Option {
	return func(w *Workspace) { w.hooks = w.hooks.Merge(h) }
}

// WithEditorOptions passes options to every editor session (autosave, history, grid).
func WithEditorOptions(opts ...editor.Option) Option {
	return func(w *Workspace) { w.editorOpts = append(w.editorOpts, opts...) }
}

// WithClock overrides the time source of exports and versions.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithIDs overrides project and version id generation.
func WithIDs(newID func() string) Option {
	return func(w *Workspace) { w.newID = newID }
}

// New creates a Workspace. Unset backends default to in-memory stores and the
// built-in catalog.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.projects == nil {
		w.projects = memory.NewStore()
	}
	if w.history == nil {
		if vs, ok := w.projects.(ports.VersionStore); ok {
			w.history = vs
		} else {
			w.history = memory.NewVersionStore()
		}
	}
	if w.catalog == nil {
		w.catalog = memory.NewCatalog(memory.DefaultItems()...)
	}
	if w.assets == nil {
		w.assets = memory.NewAssets()
	}

	editorOpts := append([]editor.Option{editor.WithHooks(w.hooks)}, w.editorOpts...)
	sessionOpts := []session.Option{
		session.WithLogger(w.logger),
		session.WithEditorOptions(editorOpts...),
	}
	if w.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(w.locker))
		if w.lockTTL > 0 {
			sessionOpts = append(sessionOpts, session.WithLockTTL(w.lockTTL))
		}
	}
	w.sessions = session.NewManager(w.projects, sessionOpts...)
	w.versions = versions.NewService(w.projects, w.history,
		versions.WithLogger(w.logger),
		versions.WithClock(w.now),
		versions.WithIDs(w.newID),
	)
	return w
}

// Sessions returns the session manager.
func (w *Workspace) Sessions() *session.Manager { return w.sessions }

// Versions returns the version service.
func (w *Workspace) Versions() *versions.Service { return w.versions }

// Catalog returns the block palette.
func (w *Workspace) Catalog() ports.Catalog { return w.catalog }

// Assets returns the upload store.
func (w *Workspace) Assets() ports.AssetStore { return w.assets }

// Logger returns the workspace logger.
func (w *Workspace) Logger() *slog.Logger { return w.logger }

// CreateProject stores a new project with a single empty home page and
// returns its generated id.
func (w *Workspace) CreateProject(ctx context.Context, name string) (string, error) {
	id := w.newID()
	if _, err := w.sessions.LoadOrCreate(ctx, id, name); err != nil {
		return "", err
	}
	return id, nil
}

// summarizer is implemented by stores that can list projects without loading
// every payload.
type summarizer interface {
	Summaries(ctx context.Context) ([]domain.ProjectSummary, error)
}

// ListProjects returns a summary per stored project, in natural name order.
func (w *Workspace) ListProjects(ctx context.Context) ([]domain.ProjectSummary, error) {
	var out []domain.ProjectSummary
	if s, ok := w.projects.(summarizer); ok {
		list, err := s.Summaries(ctx)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "list", Err: err}
		}
		out = list
	} else {
		ids, err := w.sessions.List(ctx)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "list", Err: err}
		}
		for _, id := range ids {
			data, err := w.sessions.Load(ctx, id)
			if errors.Is(err, domain.ErrProjectNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, domain.ProjectSummary{ID: id, Name: data.Name, Pages: len(data.Pages)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return natural.Less(out[i].Name, out[j].Name)
		}
		return natural.Less(out[i].ID, out[j].ID)
	})
	return out, nil
}

// Project returns the current data of a project, including unsaved changes
// of an open session.
func (w *Workspace) Project(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	if s, ok := w.sessions.Lookup(projectID); ok {
		return s.Project(), nil
	}
	return w.sessions.Load(ctx, projectID)
}

// Open returns the editor session of a project.
func (w *Workspace) Open(ctx context.Context, projectID string) (*editor.Session, error) {
	return w.sessions.Open(ctx, projectID)
}

// DeleteProject closes any open session and removes the project. Versions
// are kept.
func (w *Workspace) DeleteProject(ctx context.Context, projectID string) error {
	return w.sessions.Delete(ctx, projectID)
}

// Export renders a project as a JSON export envelope.
func (w *Workspace) Export(ctx context.Context, projectID string) ([]byte, error) {
	data, err := w.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return schema.Export(data, w.now())
}

// Import validates raw and stores it under projectID, or under a new id when
// projectID is empty. An open session adopts the imported project. It returns
// the project id.
func (w *Workspace) Import(ctx context.Context, projectID string, raw []byte) (string, error) {
	data, err := schema.Import(raw)
	if err != nil {
		return "", err
	}
	if projectID == "" {
		projectID = w.newID()
	}
	if s, ok := w.sessions.Lookup(projectID); ok {
		s.ReplaceProject(data)
		return projectID, s.Flush(ctx)
	}
	if err := w.sessions.Save(ctx, projectID, data); err != nil {
		return "", err
	}
	return projectID, nil
}

// Flush saves the open session of a project if it has unsaved changes,
// waiting for a save already in flight.
func (w *Workspace) Flush(ctx context.Context, projectID string) error {
	s, ok := w.sessions.Lookup(projectID)
	if !ok {
		return nil
	}
	return s.Flush(ctx)
}

// CreateVersion snapshots a project. Unsaved session changes are flushed first
// so that the version matches what the editor shows.
func (w *Workspace) CreateVersion(ctx context.Context, projectID string, req versions.CreateRequest) (domain.Version, error) {
	if err := w.Flush(ctx, projectID); err != nil {
		return domain.Version{}, fmt.Errorf("flush before version: %w", err)
	}
	return w.versions.Create(ctx, projectID, req)
}

// Rollback restores a version as the current project. An open session adopts
// it with a fresh history.
func (w *Workspace) Rollback(ctx context.Context, projectID, versionID string) (*domain.ProjectData, error) {
	data, err := w.versions.Rollback(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}
	if s, ok := w.sessions.Lookup(projectID); ok {
		s.ReplaceProject(data)
		if err := s.Flush(ctx); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Close flushes and releases every open session.
func (w *Workspace) Close(ctx context.Context) error {
	return w.sessions.CloseAll(ctx)
}
