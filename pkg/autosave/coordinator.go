// Package autosave schedules persistence after edits: a debounce timer that
// restarts on every change plus an interval floor, with at most one save in
// flight.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/schedule"
)

const (
	DefaultDebounce = 2 * time.Second
	DefaultInterval = 30 * time.Second
)

// SaveFunc persists the current state. It is called without the
// coordinator lock held.
type SaveFunc func(ctx context.Context) error

// Status is a point-in-time view of the coordinator flags.
type Status struct {
	Enabled           bool      `json:"enabled"`
	IsSaving          bool      `json:"isSaving"`
	HasUnsavedChanges bool      `json:"hasUnsavedChanges"`
	LastSaveTime      time.Time `json:"lastSaveTime,omitempty"`
	LastError         string    `json:"lastError,omitempty"`
}

// Coordinator decides when SaveFunc runs.
type Coordinator struct {
	save      SaveFunc
	sched     schedule.Scheduler
	debounce  time.Duration
	interval  time.Duration
	projectID string
	hooks     domain.Hooks
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	enabled  bool
	saving   bool
	idle     chan struct{}
	dirty    bool
	gen      uint64
	rerun    bool
	lastSave time.Time
	lastErr  error
	pending  schedule.Timer
	seq      uint64
	tick     schedule.Timer
	closed   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Coordinator) { c.sched = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithHooks registers save callbacks.
func WithHooks(h domain.Hooks) Option {
	return func(c *Coordinator) { c.hooks = c.hooks.Merge(h) }
}

// WithProjectID tags events and errors.
func WithProjectID(id string) Option {
	return func(c *Coordinator) { c.projectID = id }
}

// WithEnabled sets the initial enabled flag. Coordinators start enabled.
func WithEnabled(enabled bool) Option {
	return func(c *Coordinator) { c.enabled = enabled }
}

// New creates a coordinator and starts its interval timer when enabled.
func New(save SaveFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		save:     save,
		sched:    schedule.System{},
		debounce: DefaultDebounce,
		interval: DefaultInterval,
		logger:   logging.NewNop(),
		enabled:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		c.startInterval()
	}
	return c
}

// Trigger records an unsaved change and restarts the debounce timer.
// While disabled only the flag is set.
func (c *Coordinator) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dirty = true
	c.gen++
	if !c.enabled || c.closed {
		return
	}
	c.arm(c.debounce)
}

// Save runs SaveFunc unless a save is already in flight, in which case it
// returns nil immediately. On failure the unsaved flag stays set and the
// error is returned wrapped as a *domain.PersistenceError; nothing is
// rescheduled.
func (c *Coordinator) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return nil
	}
	c.saving = true
	c.idle = make(chan struct{})
	startGen := c.gen
	c.mu.Unlock()

	start := c.sched.Now()
	err := c.save(ctx)
	took := c.sched.Now().Sub(start)

	c.mu.Lock()
	c.saving = false
	close(c.idle)
	if err == nil {
		c.lastSave = c.sched.Now()
		c.lastErr = nil
		c.dirty = c.gen != startGen
	} else {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			err = &domain.PersistenceError{Op: "save", ProjectID: c.projectID, Err: err}
		}
		c.dirty = true
		c.lastErr = err
	}
	again := c.rerun && c.dirty && c.enabled && !c.closed && err == nil
	c.rerun = false
	if again {
		c.arm(0)
	}
	c.mu.Unlock()

	ev := &domain.SaveEvent{
		EventBase: domain.EventBase{Timestamp: c.sched.Now(), ProjectID: c.projectID},
		Duration:  took,
		Err:       err,
	}
	if err != nil {
		ev.Type = domain.EventSaveError
		c.logger.Error("autosave failed", "project_id", c.projectID, "duration", took, "err", err)
		if c.hooks.OnSaveError != nil {
			c.hooks.OnSaveError(ctx, ev)
		}
		return err
	}
	ev.Type = domain.EventSave
	c.logger.Debug("autosave completed", "project_id", c.projectID, "duration", took)
	if c.hooks.OnSave != nil {
		c.hooks.OnSave(ctx, ev)
	}
	return nil
}

// Flush waits for an in-flight save and then saves until no unsaved changes
// remain. It works while disabled and returns the first save error.
func (c *Coordinator) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.saving {
			idle := c.idle
			c.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		dirty := c.dirty
		c.mu.Unlock()

		if !dirty {
			return nil
		}
		if err := c.Save(ctx); err != nil {
			return err
		}
	}
}

// SetEnabled toggles autosave. Disabling stops both timers at once without
// flushing; enabling restarts the interval and re-arms the debounce when
// changes are pending.
func (c *Coordinator) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if !enabled {
		c.stopTimers()
		return
	}
	c.startInterval()
	if c.dirty {
		c.arm(c.debounce)
	}
}

// Status returns the current flags.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		Enabled:           c.enabled,
		IsSaving:          c.saving,
		HasUnsavedChanges: c.dirty,
		LastSaveTime:      c.lastSave,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// GuardUnload reports whether leaving now should be confirmed by the user.
func (c *Coordinator) GuardUnload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty && !c.saving
}

// Close stops the timers and cancels saves started by them.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimers()
	c.cancel()
}

// arm (re)starts the debounce timer. Callers hold c.mu.
func (c *Coordinator) arm(d time.Duration) {
	if c.pending != nil {
		c.pending.Stop()
	}
	c.seq++
	seq := c.seq
	c.pending = c.sched.AfterFunc(d, func() { c.onDebounce(seq) })
}

func (c *Coordinator) onDebounce(seq uint64) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	if !c.enabled || c.closed {
		c.mu.Unlock()
		return
	}
	if c.saving {
		c.rerun = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	_ = c.Save(c.ctx)
}

func (c *Coordinator) onInterval() {
	c.mu.Lock()
	run := c.enabled && !c.closed && c.dirty && !c.saving
	c.mu.Unlock()
	if run {
		_ = c.Save(c.ctx)
	}
}

func (c *Coordinator) startInterval() {
	if c.interval > 0 {
		c.tick = c.sched.Every(c.interval, c.onInterval)
	}
}

func (c *Coordinator) stopTimers() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
		c.seq++
	}
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
}
