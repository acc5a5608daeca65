package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/autosave"
	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/clipboard"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/style"
)

// Snapshot is one history entry: the blocks of the current page plus the
// selection that went with them. Entries are recorded for document changes
// only; a selection change rides along with the next edit and is restored by
// undo, but never makes an entry of its own.
type Snapshot struct {
	Blocks   []domain.Block
	Primary  *domain.BlockID
	Selected []domain.BlockID
}

// Session is the editor state of one open project. Every exported method is
// safe for concurrent use; mutations are serialized so that a document change
// and its history entry are applied together.
type Session struct {
	projectID string
	store     ports.ProjectStore
	logger    *slog.Logger
	hooks     domain.Hooks
	ctx       context.Context

	histOpts []history.Option
	saveOpts []autosave.Option
	saveOff  bool

	mu      sync.Mutex
	project *domain.ProjectData
	pageID  string
	doc     *document.Document
	nextID  domain.BlockID
	sel     canvas.Selection
	hist    *history.Manager[Snapshot]
	clip    *clipboard.Clipboard
	bp      style.Breakpoint
	grid    GridSettings
	panels  canvas.PanelState

	saver *autosave.Coordinator
}

// Option configures a Session.
type Option func(*Session)

// WithStore enables persistence and autosave through store.
func WithStore(store ports.ProjectStore) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithHooks registers lifecycle callbacks. Save hooks are forwarded to autosave.
func WithHooks(h domain.Hooks) Option {
	return func(s *Session) { s.hooks = s.hooks.Merge(h) }
}

// WithHistory passes options to the undo stack (depth, coalescing window, clock).
func WithHistory(opts ...history.Option) Option {
	return func(s *Session) { s.histOpts = append(s.histOpts, opts...) }
}

// WithAutosave passes options to the autosave coordinator.
func WithAutosave(opts ...autosave.Option) Option {
	return func(s *Session) { s.saveOpts = append(s.saveOpts, opts...) }
}

// WithoutAutosave keeps the store for explicit Save calls only.
func WithoutAutosave() Option {
	return func(s *Session) { s.saveOff = true }
}

// WithGrid sets the initial grid configuration.
func WithGrid(g GridSettings) Option {
	return func(s *Session) { s.grid = g }
}

// New opens a session over data. The home page becomes the current page.
func New(projectID string, data *domain.ProjectData, opts ...Option) *Session {
	s := &Session{
		projectID: projectID,
		logger:    logging.NewNop(),
		ctx:       context.Background(),
		clip:      clipboard.New(),
		bp:        style.Desktop1440,
		grid:      DefaultGrid(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if data == nil {
		data = domain.NewProjectData(projectID)
	}
	s.adopt(data.Clone())

	if s.store != nil {
		saveOpts := append([]autosave.Option{
			autosave.WithLogger(s.logger),
			autosave.WithProjectID(projectID),
			autosave.WithHooks(domain.Hooks{OnSave: s.hooks.OnSave, OnSaveError: s.hooks.OnSaveError}),
		}, s.saveOpts...)
		if s.saveOff {
			saveOpts = append(saveOpts, autosave.WithEnabled(false))
		}
		s.saver = autosave.New(s.persist, saveOpts...)
	}
	return s
}

// Open loads projectID from store and starts a session on it. Load failures
// mean the session cannot start.
func Open(ctx context.Context, store ports.ProjectStore, projectID string, opts ...Option) (*Session, error) {
	data, err := store.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", projectID, err)
	}
	return New(projectID, data, append([]Option{WithStore(store)}, opts...)...), nil
}

// ProjectID returns the id the session saves under.
func (s *Session) ProjectID() string {
	return s.projectID
}

// adopt replaces the whole project. Callers hold s.mu or own s exclusively.
func (s *Session) adopt(data *domain.ProjectData) {
	if len(data.Pages) == 0 {
		data.Pages = domain.NewProjectData(data.Name).Pages
	}
	s.project = data
	for _, p := range data.Pages {
		for _, b := range p.Blocks {
			if b.ID >= s.nextID {
				s.nextID = b.ID + 1
			}
		}
	}
	home, _ := data.Home()
	s.loadPage(home)
}

// loadPage makes p the live page. Block ids come from one counter shared by
// every page of the session and never move backwards.
func (s *Session) loadPage(p *domain.Page) {
	if s.doc != nil {
		s.doc.Reserve(s.nextID)
		s.nextID = s.doc.NextID()
	}
	s.pageID = p.ID
	s.doc = document.FromBlocks(p.Blocks)
	s.doc.Reserve(s.nextID)
	s.sel.Clear()
	if s.hist == nil {
		s.hist = history.New(s.snapshot(), s.histOpts...)
	} else {
		s.hist.Reset(s.snapshot())
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{Blocks: s.doc.Blocks(), Selected: s.sel.IDs()}
	if id, ok := s.sel.Primary(); ok {
		snap.Primary = id.Ptr()
	}
	return snap
}

// syncPage writes the live document back into the project pages.
func (s *Session) syncPage() {
	if p, ok := s.project.Page(s.pageID); ok {
		p.Blocks = s.doc.Blocks()
	}
}

// mutate runs fn under the session lock and records its result as one
// history entry. A non-empty key coalesces consecutive edits. Nothing is
// recorded when fn reports no change or fails.
func (s *Session) mutate(op, key string, fn func() (bool, error)) error {
	s.mu.Lock()
	before := s.doc.Blocks()
	changed, err := fn()
	if err != nil || !changed {
		if err != nil {
			s.logger.Debug("edit rejected", "project_id", s.projectID, "page_id", s.pageID, "op", op, "err", err)
		}
		s.mu.Unlock()
		return err
	}
	s.sel.Prune(s.doc.Contains)
	snap := s.snapshot()
	if key != "" {
		s.hist.Coalesce(key, snap)
	} else {
		s.hist.Commit(snap)
	}
	ev := s.event(domain.EventCommit, op, before, snap)
	s.mu.Unlock()

	s.touched()
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(s.ctx, ev)
	}
	return nil
}

// mutatePage is mutate for project-level edits that bypass block history.
func (s *Session) mutatePage(op string, fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	ev := &domain.CommitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommit, ProjectID: s.projectID},
		PageID:    s.pageID,
		Op:        op,
	}
	s.mu.Unlock()

	s.touched()
	if s.hooks.OnCommit != nil {
		s.hooks.OnCommit(s.ctx, ev)
	}
	return nil
}

func (s *Session) event(t domain.EventType, op string, before []domain.Block, after Snapshot) *domain.CommitEvent {
	diff := domain.Diff(before, after.Blocks)
	if diff == nil {
		diff = &domain.DocumentDiff{}
	}
	diff.ProjectID = s.projectID
	diff.PageID = s.pageID
	diff.Selection = after.Selected
	if diff.Selection == nil {
		diff.Selection = []domain.BlockID{}
	}
	return &domain.CommitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t, ProjectID: s.projectID},
		PageID:    s.pageID,
		Op:        op,
		Diff:      diff,
	}
}

func (s *Session) touched() {
	if s.saver != nil {
		s.saver.Trigger()
	}
}

// Undo restores the previous history entry. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	return s.travel(domain.EventUndo, s.hist.Undo, s.hooks.OnUndo)
}

// Redo re-applies the last undone entry.
func (s *Session) Redo() bool {
	return s.travel(domain.EventRedo, s.hist.Redo, s.hooks.OnRedo)
}

func (s *Session) travel(t domain.EventType, step func() (Snapshot, bool), hook func(context.Context, *domain.CommitEvent)) bool {
	s.mu.Lock()
	before := s.doc.Blocks()
	snap, ok := step()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc.Restore(snap.Blocks)
	s.sel.Set(snap.Primary, snap.Selected)
	ev := s.event(t, string(t), before, snap)
	s.mu.Unlock()

	s.touched()
	if hook != nil {
		hook(s.ctx, ev)
	}
	return true
}

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether Redo would change anything.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// SealEdit ends the current coalesced edit, e.g. when a field loses focus.
func (s *Session) SealEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.Seal()
}

// Project returns a deep copy of the project including the live page.
func (s *Session) Project() *domain.ProjectData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncPage()
	return s.project.Clone()
}

func (s *Session) persist(ctx context.Context) error {
	return s.store.Save(ctx, s.projectID, s.Project())
}

// ErrNoStore is returned by Save on a session without persistence.
var ErrNoStore = errors.New("session has no project store")

// Save persists now. It is a no-op while another save is in flight.
func (s *Session) Save(ctx context.Context) error {
	if s.saver == nil {
		return ErrNoStore
	}
	return s.saver.Save(ctx)
}

// Flush waits for a save in flight and persists whatever is still unsaved.
func (s *Session) Flush(ctx context.Context) error {
	if s.saver == nil {
		return ErrNoStore
	}
	return s.saver.Flush(ctx)
}

// SetAutosave enables or disables background saves.
func (s *Session) SetAutosave(enabled bool) {
	if s.saver != nil {
		s.saver.SetEnabled(enabled)
	}
}

// SaveStatus returns the autosave flags. Sessions without a store report
// autosave disabled.
func (s *Session) SaveStatus() autosave.Status {
	if s.saver == nil {
		return autosave.Status{}
	}
	return s.saver.Status()
}

// GuardUnload reports whether closing the editor should ask for confirmation.
func (s *Session) GuardUnload() bool {
	return s.saver != nil && s.saver.GuardUnload()
}

// Close stops background saves. Unsaved changes are not flushed; call Flush
// first to keep them.
func (s *Session) Close() {
	if s.saver != nil {
		s.saver.Close()
	}
}

// State is a read-only view of the editor for clients.
type State struct {
	ProjectID  string            `json:"projectId"`
	PageID     string            `json:"pageId"`
	Blocks     []domain.Block    `json:"blocks"`
	Primary    *domain.BlockID   `json:"selectedBlockId"`
	Selected   []domain.BlockID  `json:"selectedBlockIds"`
	Breakpoint style.Breakpoint  `json:"breakpoint"`
	Grid       GridSettings      `json:"grid"`
	Panels     canvas.PanelState `json:"panels"`
	CanUndo    bool              `json:"canUndo"`
	CanRedo    bool              `json:"canRedo"`
	CanPaste   bool              `json:"canPaste"`
	Autosave   autosave.Status   `json:"autosave"`
}

// State returns the current view.
func (s *Session) State() State {
	status := s.SaveStatus()

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	return State{
		ProjectID:  s.projectID,
		PageID:     s.pageID,
		Blocks:     snap.Blocks,
		Primary:    snap.Primary,
		Selected:   snap.Selected,
		Breakpoint: s.bp,
		Grid:       s.grid,
		Panels:     s.panels,
		CanUndo:    s.hist.CanUndo(),
		CanRedo:    s.hist.CanRedo(),
		CanPaste:   s.clip.CanPaste(),
		Autosave:   status,
	}
}
