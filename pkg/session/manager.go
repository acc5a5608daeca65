package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/ports"
	"go.uber.org/multierr"
)

// DefaultLockTTL bounds how long a distributed project lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to projects and keeps at most one open editor
// session per project in this process. Lock entries are reference counted
// and dropped when unused.
type Manager struct {
	store ports.ProjectStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	smu      sync.Mutex
	sessions map[string]*editor.Session

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	editorOpts []editor.Option
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions are applied to every session opened by the Manager.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a new Manager over store.
func NewManager(store ports.ProjectStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*editor.Session),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(projectID) after unlocking.
func (m *Manager) acquire(projectID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[projectID]
	if !exists {
		entry = &lockEntry{}
		m.locks[projectID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[projectID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, projectID)
	}
}

// Load retrieves a project from the store.
func (m *Manager) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	var data *domain.ProjectData
	err := m.WithLock(ctx, projectID, func(ctx context.Context) error {
		var err error
		data, err = m.store.Load(ctx, projectID)
		return err
	})
	return data, err
}

// LoadOrCreate loads a project, creating an empty one named name if missing.
func (m *Manager) LoadOrCreate(ctx context.Context, projectID, name string) (*domain.ProjectData, error) {
	var data *domain.ProjectData
	err := m.WithLock(ctx, projectID, func(ctx context.Context) error {
		var err error
		data, err = m.store.Load(ctx, projectID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrProjectNotFound) {
			return fmt.Errorf("failed to check project existence: %w", err)
		}

		if name == "" {
			name = projectID
		}
		data = domain.NewProjectData(name)
		if err := m.store.Save(ctx, projectID, data); err != nil {
			return fmt.Errorf("failed to initialize project: %w", err)
		}
		m.logger.Info("project created", "project_id", projectID)
		return nil
	})
	return data, err
}

// Save persists the project.
func (m *Manager) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	return m.WithLock(ctx, projectID, func(ctx context.Context) error {
		return m.store.Save(ctx, projectID, data)
	})
}

// Delete closes any open session of the project and removes it from the store.
func (m *Manager) Delete(ctx context.Context, projectID string) error {
	m.smu.Lock()
	if s, ok := m.sessions[projectID]; ok {
		s.Close()
		delete(m.sessions, projectID)
	}
	m.smu.Unlock()

	return m.WithLock(ctx, projectID, func(ctx context.Context) error {
		return m.store.Delete(ctx, projectID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying project store.
func (m *Manager) Store() ports.ProjectStore {
	return m.store
}

// Open returns the editor session of projectID, loading the project on first use.
func (m *Manager) Open(ctx context.Context, projectID string) (*editor.Session, error) {
	m.smu.Lock()
	defer m.smu.Unlock()

	if s, ok := m.sessions[projectID]; ok {
		return s, nil
	}

	var s *editor.Session
	err := m.WithLock(ctx, projectID, func(ctx context.Context) error {
		var err error
		opts := append([]editor.Option{editor.WithLogger(m.logger)}, m.editorOpts...)
		s, err = editor.Open(ctx, lockedStore{ProjectStore: m.store, m: m}, projectID, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.sessions[projectID] = s
	m.logger.Debug("session opened", "project_id", projectID)
	return s, nil
}

// Lookup returns the open session of projectID without loading it.
func (m *Manager) Lookup(projectID string) (*editor.Session, bool) {
	m.smu.Lock()
	defer m.smu.Unlock()
	s, ok := m.sessions[projectID]
	return s, ok
}

// Sessions returns the ids of open sessions.
func (m *Manager) Sessions() []string {
	m.smu.Lock()
	defer m.smu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close flushes unsaved changes of an open session, waiting for a save in
// flight, and releases it. Closing a project without a session is a no-op.
func (m *Manager) Close(ctx context.Context, projectID string) error {
	m.smu.Lock()
	s, ok := m.sessions[projectID]
	delete(m.sessions, projectID)
	m.smu.Unlock()
	if !ok {
		return nil
	}

	defer s.Close()
	// Session saves take the project lock themselves.
	return s.Flush(ctx)
}

// CloseAll closes every open session and reports every flush failure.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs error
	for _, id := range m.Sessions() {
		errs = multierr.Append(errs, m.Close(ctx, id))
	}
	return errs
}

// lockedStore makes every session write, autosaves included, hold the
// project lock.
type lockedStore struct {
	ports.ProjectStore
	m *Manager
}

func (s lockedStore) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	return s.m.WithLock(ctx, projectID, func(ctx context.Context) error {
		return s.ProjectStore.Save(ctx, projectID, data)
	})
}

// WithLock executes a function while holding the lock for the project.
func (m *Manager) WithLock(ctx context.Context, projectID string, fn func(context.Context) error) error {
	entry := m.acquire(projectID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(projectID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, projectID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"project_id", projectID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
