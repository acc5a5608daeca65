package versions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Scheduler takes periodic snapshots of stored projects on a cron schedule.
// A project is only snapshotted when it differs from its newest version.
type Scheduler struct {
	svc      *Service
	cron     *cron.Cron
	logger   *slog.Logger
	projects func(ctx context.Context) ([]string, error)

	mu  sync.Mutex
	ctx context.Context
}

// NewScheduler creates a stopped scheduler. projects lists the ids to snapshot
// on each run; it defaults to every project in the store.
func NewScheduler(svc *Service, projects func(ctx context.Context) ([]string, error), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if projects == nil {
		projects = svc.projects.List
	}
	return &Scheduler{
		svc:      svc,
		cron:     cron.New(),
		logger:   logger,
		projects: projects,
		ctx:      context.Background(),
	}
}

// Schedule registers spec (standard five-field cron syntax or descriptors
// such as "@hourly").
func (s *Scheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.RunOnce(s.context()) }); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	return nil
}

// Start runs the cron loop until Stop or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the loop and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce snapshots every changed project and returns the created versions.
// Failures are logged per project and do not stop the run.
func (s *Scheduler) RunOnce(ctx context.Context) ([]domain.Version, error) {
	ids, err := s.projects(ctx)
	if err != nil {
		return nil, err
	}

	var created []domain.Version
	for _, id := range ids {
		v, ok, err := s.snapshot(ctx, id)
		if err != nil {
			s.logger.Warn("scheduled snapshot failed", "project_id", id, "err", err)
			continue
		}
		if ok {
			created = append(created, v)
		}
	}
	return created, nil
}

func (s *Scheduler) snapshot(ctx context.Context, projectID string) (domain.Version, bool, error) {
	data, err := s.svc.projects.Load(ctx, projectID)
	if err != nil {
		return domain.Version{}, false, err
	}
	list, err := s.svc.versions.ListVersions(ctx, projectID)
	if err != nil {
		return domain.Version{}, false, err
	}
	if len(list) > 0 {
		latest := SortByDate(list)[0]
		d := domain.DiffProjects(latest.Data, data)
		if latest.Data != nil && len(d.Added)+len(d.Removed)+len(d.Changed) == 0 && latest.Data.Name == data.Name {
			return domain.Version{}, false, nil
		}
	}
	v, err := s.svc.Snapshot(ctx, projectID, data, CreateRequest{Description: "scheduled snapshot", Author: "scheduler"})
	return v, err == nil, err
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
