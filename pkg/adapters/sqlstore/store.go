package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Store implements ports.ProjectStore and ports.VersionStore on a SQL
// database. Project and version payloads are stored as JSON text.
type Store struct {
	db     *sql.DB
	d      dialect
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open connects to driver (sqlite, postgres or mysql) and migrates the schema.
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if d.name == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return newStore(db, d, opts...)
}

// OpenMemory creates an in-memory SQLite store (useful for testing).
func OpenMemory(opts ...Option) (*Store, error) {
	db, err := sql.Open(DriverSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	d, _ := dialectFor(DriverSQLite)
	return newStore(db, d, opts...)
}

// New wraps an existing handle. driver selects the SQL dialect.
func New(db *sql.DB, driver string, opts ...Option) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newStore(db, d, opts...)
}

func newStore(db *sql.DB, d dialect, opts ...Option) (*Store, error) {
	s := &Store{
		db:     db,
		d:      d,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	s.logger.Debug("schema ready", "driver", s.d.name)
	return nil
}

// Driver returns the dialect name.
func (s *Store) Driver() string {
	return s.d.name
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the project, replacing any previous payload.
func (s *Store) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	q := s.d.upsert("pagecraft_projects", []string{"id"}, []string{"name", "data", "updated_at"})
	if _, err := s.db.ExecContext(ctx, q, projectID, data.Name, string(raw), s.now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Load reads a project.
func (s *Store) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.d.rebind("SELECT data FROM pagecraft_projects WHERE id = ?"), projectID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	var data domain.ProjectData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return &data, nil
}

// Delete removes a project row. Versions are kept.
func (s *Store) Delete(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, s.d.rebind("DELETE FROM pagecraft_projects WHERE id = ?"), projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List returns project ids in id order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM pagecraft_projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Summaries lists projects with their name and last save time.
func (s *Store) Summaries(ctx context.Context) ([]domain.ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, data, updated_at FROM pagecraft_projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.ProjectSummary
	for rows.Next() {
		var (
			sum     domain.ProjectSummary
			raw     string
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &raw, &updated); err != nil {
			return nil, err
		}
		var data domain.ProjectData
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			sum.Pages = len(data.Pages)
		}
		sum.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}
