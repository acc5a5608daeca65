package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/autosave"
	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/editor"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/layout"
	"github.com/aretw0/pagecraft/pkg/style"
)

func fixedClock() history.Option {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return history.WithClock(func() time.Time { return now })
}

func newSession(t *testing.T, opts ...editor.Option) *editor.Session {
	t.Helper()
	s := editor.New("demo", testutils.SampleProject("Demo"), append([]editor.Option{editor.WithHistory(fixedClock())}, opts...)...)
	t.Cleanup(s.Close)
	return s
}

func ids(blocks []domain.Block) []domain.BlockID {
	out := make([]domain.BlockID, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

type recorder struct {
	mu     sync.Mutex
	events []*domain.CommitEvent
}

func (r *recorder) hooks() domain.Hooks {
	rec := func(_ context.Context, ev *domain.CommitEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	}
	return domain.Hooks{OnCommit: rec, OnUndo: rec, OnRedo: rec}
}

func (r *recorder) last() *domain.CommitEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func TestSession_InsertUndoRedo(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, editor.WithHooks(rec.hooks()))

	id, err := s.Insert(domain.NewBlock(domain.BlockImage), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockID(5), id, "ids continue after the about page")
	assert.Equal(t, []domain.BlockID{1, 5, 2, 3}, ids(s.Blocks()))

	primary, _ := s.Selection()
	require.NotNil(t, primary)
	assert.Equal(t, id, *primary)

	ev := rec.last()
	require.NotNil(t, ev)
	assert.Equal(t, domain.EventCommit, ev.Type)
	assert.Equal(t, "insert", ev.Op)
	assert.Contains(t, ids(ev.Diff.Upserted), id)
	assert.Equal(t, []domain.BlockID{id}, ev.Diff.Selection)

	require.True(t, s.Undo())
	assert.Equal(t, []domain.BlockID{1, 2, 3}, ids(s.Blocks()))
	primary, selected := s.Selection()
	assert.Nil(t, primary)
	assert.Empty(t, selected)
	assert.Equal(t, domain.EventUndo, rec.last().Type)
	assert.Equal(t, []domain.BlockID{id}, rec.last().Diff.Removed)

	require.True(t, s.Redo())
	assert.Equal(t, []domain.BlockID{1, 5, 2, 3}, ids(s.Blocks()))
	primary, _ = s.Selection()
	require.NotNil(t, primary)
	assert.Equal(t, id, *primary)
	assert.False(t, s.Redo())

	next, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockID(6), next, "ids are never reused")
}

func TestSession_CoalescedEdits(t *testing.T) {
	s := newSession(t)

	for _, text := range []string{"h", "he", "hey"} {
		ok, err := s.UpdateContent(1, map[string]any{"text": text})
		require.NoError(t, err)
		require.True(t, ok)
	}
	b, _ := s.Block(1)
	assert.Equal(t, "hey", b.Content["text"])

	require.True(t, s.Undo())
	b, _ = s.Block(1)
	assert.Equal(t, "hello", b.Content["text"], "one undo step for the whole burst")
	assert.False(t, s.CanUndo())

	_, _ = s.UpdateStyles(1, domain.StyleMap{"color": "blue"})
	s.SealEdit()
	_, _ = s.UpdateStyles(1, domain.StyleMap{"color": "green"})
	require.True(t, s.Undo())
	b, _ = s.Block(1)
	assert.Equal(t, "blue", b.Styles["color"], "sealed edits are separate steps")
}

func TestSession_LockedRejected(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, editor.WithHooks(rec.hooks()))

	require.True(t, s.SetLocked(2, true))
	commits := len(rec.events)

	_, err := s.UpdateStyles(2, domain.StyleMap{"color": "red"})
	assert.ErrorIs(t, err, domain.ErrLocked)
	_, err = s.Move(3, document.Up)
	assert.ErrorIs(t, err, domain.ErrLocked, "child of a locked parent")
	_, err = s.Insert(domain.NewBlock(domain.BlockText), domain.BlockID(2).Ptr(), 0)
	assert.ErrorIs(t, err, domain.ErrLocked)
	assert.Len(t, rec.events, commits, "rejected edits are not recorded")

	assert.True(t, s.Rename(2, "Frame"), "rename is allowed on locked blocks")
	ok, err := s.UpdateContent(99, map[string]any{"x": 1})
	assert.NoError(t, err)
	assert.False(t, ok, "missing ids are a no-op")
}

func TestSession_ClipboardAndShortcuts(t *testing.T) {
	s := newSession(t)
	require.True(t, s.Select(2, false))
	assert.False(t, s.CanUndo(), "selection alone is not an undo step")

	action, err := s.HandleKey(canvas.KeyEvent{Key: "c", Ctrl: true})
	require.NoError(t, err)
	assert.Equal(t, canvas.ActionCopy, action)

	require.True(t, s.Select(1, false))
	action, err = s.HandleKey(canvas.KeyEvent{Key: "v", Meta: true})
	require.NoError(t, err)
	assert.Equal(t, canvas.ActionPaste, action)

	top := s.State().Blocks
	var roots []domain.BlockID
	for _, b := range top {
		if b.ParentID == nil {
			roots = append(roots, b.ID)
		}
	}
	assert.Equal(t, []domain.BlockID{1, 5, 2}, roots, "pasted right after the primary selection")
	pasted, _ := s.Block(7)
	require.NotNil(t, pasted.ParentID)
	assert.Equal(t, domain.BlockID(5), *pasted.ParentID, "subtree copied with fresh ids")

	primary, _ := s.Selection()
	assert.Equal(t, domain.BlockID(5), *primary)

	_, err = s.HandleKey(canvas.KeyEvent{Key: "d", Ctrl: true})
	require.NoError(t, err)
	primary, _ = s.Selection()
	assert.Equal(t, domain.BlockID(7), *primary)

	_, _ = s.HandleKey(canvas.KeyEvent{Key: "Delete"})
	_, err = s.Block(7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, selected := s.Selection()
	assert.Empty(t, selected)

	_, _ = s.HandleKey(canvas.KeyEvent{Key: "z", Ctrl: true})
	_, err = s.Block(7)
	assert.NoError(t, err, "undo restores the deleted block")

	_, _ = s.HandleKey(canvas.KeyEvent{Key: "a", Ctrl: true})
	_, selected = s.Selection()
	assert.Len(t, selected, 4, "select all takes top-level blocks")

	_, _ = s.HandleKey(canvas.KeyEvent{Key: "Escape"})
	_, selected = s.Selection()
	assert.Empty(t, selected)

	require.True(t, s.Select(2, false))
	_, err = s.HandleKey(canvas.KeyEvent{Key: "ArrowUp", Alt: true})
	require.NoError(t, err)
	b, _ := s.Block(2)
	assert.Equal(t, 2, b.Position, "swapped with the duplicate above it")
}

func TestSession_DragDrop(t *testing.T) {
	s := newSession(t)
	item, ok := s.Drag(1)
	require.True(t, ok)

	target, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 2)
	require.NoError(t, err)

	ok, err = s.Drop(item, target)
	require.NoError(t, err)
	assert.True(t, ok)
	b, _ := s.Block(1)
	assert.Equal(t, 1, b.Position, "a drop moves one step")
}

func TestSession_CatalogAndStyles(t *testing.T) {
	s := newSession(t)
	id, err := s.AddFromCatalog(context.Background(), memory.NewCatalog(), "button", canvas.DropTarget{Parent: domain.BlockID(2).Ptr()})
	require.NoError(t, err)
	b, _ := s.Block(id)
	assert.Equal(t, domain.BlockButton, b.Type)
	assert.Equal(t, 1, b.Position)

	_, err = s.AddFromCatalog(context.Background(), memory.NewCatalog(), "nope", canvas.DropTarget{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s.SetBreakpoint(style.Tablet768)
	_, err = s.UpdateResponsiveStyles(id, domain.StyleMap{"padding": "4px"})
	require.NoError(t, err)

	got, err := s.EffectiveStyles(id)
	require.NoError(t, err)
	assert.Equal(t, "4px", got["padding"])

	s.SetBreakpoint(style.Desktop1440)
	got, _ = s.EffectiveStyles(id)
	assert.Equal(t, "12px 24px", got["padding"])

	_, err = s.SetDeviceVisibility(id, domain.DeviceMobile, true)
	require.NoError(t, err)
	assert.Contains(t, s.Stylesheet(), "display: none")
}

func TestSession_AlignAndPlace(t *testing.T) {
	s := newSession(t)

	ok, err := s.Align([]layout.Rect{
		{ID: 1, X: 40, Y: 0, Width: 100, Height: 20},
		{ID: 2, X: 10, Y: 50, Width: 60, Height: 20},
	}, layout.EdgeLeft)
	require.NoError(t, err)
	require.True(t, ok)
	for _, id := range []domain.BlockID{1, 2} {
		b, _ := s.Block(id)
		assert.Equal(t, "10px", b.Styles["left"])
		assert.Equal(t, "absolute", b.Styles["position"])
	}
	require.True(t, s.Undo())
	b, _ := s.Block(1)
	assert.NotContains(t, b.Styles, "left", "align is one undo step")

	s.SetLocked(2, true)
	_, err = s.Distribute([]layout.Rect{{ID: 1}, {ID: 2, X: 50}, {ID: 3, X: 100}}, layout.AxisHorizontal)
	assert.ErrorIs(t, err, domain.ErrLocked)
	b, _ = s.Block(1)
	assert.NotContains(t, b.Styles, "left", "locked target rejects the batch")

	others := []layout.Rect{{ID: 2, X: 103, Y: 0, Width: 50, Height: 50}}
	x, y := s.Snap(1, 101, 31, others)
	assert.Equal(t, 103.0, x, "object edge wins within threshold")
	assert.Equal(t, 40.0, y, "grid applies otherwise")

	_, err = s.Place(1, 101, 31, others)
	require.NoError(t, err)
	b, _ = s.Block(1)
	assert.Equal(t, "103px", b.Styles["left"])
	assert.Equal(t, "40px", b.Styles["top"])

	s.SetGrid(editor.GridSettings{})
	x, y = s.Snap(1, 101, 31, others)
	assert.Equal(t, 101.0, x)
	assert.Equal(t, 31.0, y)
}

func TestSession_Pages(t *testing.T) {
	s := newSession(t)

	_, err := s.UpdateContent(1, map[string]any{"text": "changed"})
	require.NoError(t, err)

	page, err := s.AddPage("About Us", "")
	require.NoError(t, err)
	assert.Equal(t, "/about-us", page.Path)
	dup, err := s.AddPage("About Us", "")
	require.NoError(t, err)
	assert.Equal(t, "/about-us-2", dup.Path)
	_, err = s.AddPage("  ", "")
	assert.ErrorIs(t, err, editor.ErrPageName)

	require.NoError(t, s.SelectPage("about"))
	assert.Equal(t, "about", s.CurrentPage())
	assert.False(t, s.CanUndo(), "history starts over on another page")
	assert.Equal(t, []domain.BlockID{4}, ids(s.Blocks()))
	assert.Error(t, s.SelectPage("missing"))

	home, _ := s.Project().Page("home")
	assert.Equal(t, "changed", home.Blocks[0].Content["text"], "leaving a page keeps its edits")

	title := "About"
	require.NoError(t, s.UpdatePage("about", editor.PageUpdate{Meta: &domain.PageMeta{Title: title}}))
	about, _ := s.Project().Page("about")
	assert.Equal(t, title, about.Meta.Title)

	require.NoError(t, s.SetHomePage("about"))
	require.NoError(t, s.DeletePage("about"))
	assert.Equal(t, "home", s.CurrentPage(), "deleting the current page switches home")
	p := s.Project()
	require.Len(t, p.Pages, 3)
	h, _ := p.Home()
	assert.Equal(t, "home", h.ID, "first remaining page is promoted")
	assert.True(t, h.IsHome)

	require.NoError(t, s.DeletePage(page.ID))
	require.NoError(t, s.DeletePage(dup.ID))
	assert.ErrorIs(t, s.DeletePage("home"), editor.ErrLastPage)
}

func TestSession_IDsUniqueAcrossPages(t *testing.T) {
	s := editor.New("demo", nil, editor.WithHistory(fixedClock()))
	t.Cleanup(s.Close)

	a, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)
	b, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 1)
	require.NoError(t, err)
	require.True(t, s.Delete(b))

	page, err := s.AddPage("Other", "")
	require.NoError(t, err)
	require.NoError(t, s.SelectPage(page.ID))
	c, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)

	home, _ := s.Project().Home()
	require.NoError(t, s.SelectPage(home.ID))
	d, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []domain.BlockID{1, 2, 3, 4}, []domain.BlockID{a, b, c, d})

	seen := map[domain.BlockID]bool{}
	for _, p := range s.Project().Pages {
		for _, blk := range p.Blocks {
			assert.False(t, seen[blk.ID], "block %d appears on two pages", blk.ID)
			seen[blk.ID] = true
		}
	}

	s.ReplaceProject(domain.NewProjectData("Fresh"))
	e, err := s.Insert(domain.NewBlock(domain.BlockText), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockID(5), e, "replacing the project does not rewind the counter")
}

func TestSession_Autosave(t *testing.T) {
	sched := testutils.NewManualScheduler()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "demo", testutils.SampleProject("Demo")))

	s, err := editor.Open(ctx, store, "demo",
		editor.WithHistory(fixedClock()),
		editor.WithAutosave(autosave.WithScheduler(sched)),
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	assert.False(t, s.GuardUnload())

	_, err = s.UpdateContent(1, map[string]any{"text": "saved"})
	require.NoError(t, err)
	assert.True(t, s.GuardUnload())
	assert.True(t, s.State().Autosave.HasUnsavedChanges)

	sched.Advance(autosave.DefaultDebounce)
	assert.False(t, s.GuardUnload())

	loaded, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Pages[0].Blocks[0].Content["text"])

	_, err = editor.Open(ctx, store, "missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestSession_NoStore(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.Save(context.Background()), editor.ErrNoStore)
	assert.False(t, s.GuardUnload())
	assert.False(t, s.SaveStatus().Enabled)
}

func TestSession_Import(t *testing.T) {
	s := newSession(t)

	err := s.Import([]byte(`{"pages":[{"name":"X","blocks":[{"type":"text"}]}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrImportValidation))
	assert.Equal(t, []domain.BlockID{1, 2, 3}, ids(s.Blocks()), "rejected imports change nothing")

	raw, err := s.Export(time.Now())
	require.NoError(t, err)

	other := editor.New("copy", nil)
	defer other.Close()
	require.NoError(t, other.Import(raw))
	assert.Equal(t, s.Blocks(), other.Blocks())
	assert.Len(t, other.Pages(), 2)
}

func TestSession_Gestures(t *testing.T) {
	s := newSession(t)
	assert.True(t, s.HandleGesture(canvas.Gesture{Kind: canvas.GestureSwipeRight}))
	assert.True(t, s.Panels().LeftOpen)
	assert.True(t, s.HandleGesture(canvas.Gesture{Kind: canvas.GestureSwipeLeft}))
	assert.False(t, s.Panels().LeftOpen)
	assert.False(t, s.HandleGesture(canvas.Gesture{Kind: canvas.GestureLongPress}))
}
