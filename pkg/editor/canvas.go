package editor

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/layout"
	"github.com/aretw0/pagecraft/pkg/style"
)

// GridSettings controls the canvas grid and snapping while placing blocks.
type GridSettings struct {
	Enabled       bool    `json:"enabled"`
	Size          float64 `json:"size"`
	SnapToGrid    bool    `json:"snapToGrid"`
	SnapToObjects bool    `json:"snapToObjects"`
	SnapThreshold float64 `json:"snapThreshold"`
}

// DefaultGrid is a visible 20px grid with both snapping modes on.
func DefaultGrid() GridSettings {
	return GridSettings{
		Enabled:       true,
		Size:          20,
		SnapToGrid:    true,
		SnapToObjects: true,
		SnapThreshold: layout.DefaultSnapThreshold,
	}
}

// Select selects id, toggling it in the set when multi is true. Unknown ids
// are ignored. Selection changes alone add no history entry.
func (s *Session) Select(id domain.BlockID, multi bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.Contains(id) {
		return false
	}
	s.sel.Select(id, multi)
	return true
}

// SelectAll selects every top-level block on the page.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := s.doc.Children(nil)
	ids := make([]domain.BlockID, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	s.sel.SelectAll(ids)
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// Selection returns the primary id, if any, and the selected set.
func (s *Session) Selection() (*domain.BlockID, []domain.BlockID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	return snap.Primary, snap.Selected
}

// SetBreakpoint switches the preview breakpoint.
func (s *Session) SetBreakpoint(bp style.Breakpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bp = bp
}

// Breakpoint returns the preview breakpoint.
func (s *Session) Breakpoint() style.Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bp
}

// EffectiveStyles resolves the styles of id at the preview breakpoint.
func (s *Session) EffectiveStyles(id domain.BlockID) (domain.StyleMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.doc.Lookup(id)
	if err != nil {
		return nil, err
	}
	return style.Resolve(&b, s.bp), nil
}

// Stylesheet renders the CSS of every block on the page, including the
// responsive media queries.
func (s *Session) Stylesheet() string {
	s.mu.Lock()
	blocks := s.doc.Blocks()
	s.mu.Unlock()

	var sb strings.Builder
	for i := range blocks {
		sb.WriteString(style.Stylesheet(fmt.Sprintf("#block-%d", blocks[i].ID), &blocks[i]))
	}
	return sb.String()
}

// Grid returns the grid settings.
func (s *Session) Grid() GridSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// SetGrid replaces the grid settings.
func (s *Session) SetGrid(g GridSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = g
}

// Snap adjusts a dragged position. Object snapping is tried first against the
// edges of others; the grid applies when no object is close enough.
func (s *Session) Snap(id domain.BlockID, x, y float64, others []layout.Rect) (float64, float64) {
	g := s.Grid()
	xs, ys := layout.SnapPoints(others, id)
	snap := func(v float64, candidates []float64) float64 {
		if g.SnapToObjects {
			if got := layout.SnapToObject(v, candidates, g.SnapThreshold); got != v {
				return got
			}
		}
		if g.Enabled && g.SnapToGrid {
			return layout.SnapToGrid(v, g.Size)
		}
		return v
	}
	return snap(x, xs), snap(y, ys)
}

// Place snaps and stores an absolute position for id.
func (s *Session) Place(id domain.BlockID, x, y float64, others []layout.Rect) (bool, error) {
	x, y = s.Snap(id, x, y, others)
	return s.applyPatches("place", map[domain.BlockID]layout.Patch{id: {X: &x, Y: &y}})
}

// Align moves the measured blocks onto a shared edge as one undo step.
func (s *Session) Align(rects []layout.Rect, edge layout.Edge) (bool, error) {
	return s.applyPatches("align", layout.Align(rects, edge))
}

// Distribute spaces the measured blocks evenly as one undo step.
func (s *Session) Distribute(rects []layout.Rect, axis layout.Axis) (bool, error) {
	return s.applyPatches("distribute", layout.Distribute(rects, axis))
}

// applyPatches writes position patches as styles. A locked target rejects the
// whole batch before anything changes.
func (s *Session) applyPatches(op string, patches map[domain.BlockID]layout.Patch) (bool, error) {
	if len(patches) == 0 {
		return false, nil
	}
	return s.change(op, "", func() (bool, error) {
		for id := range patches {
			if b, ok := s.doc.Get(id); ok && b.Locked {
				return false, domain.ErrLocked
			}
		}
		changed := false
		for id, p := range patches {
			ok, err := s.doc.UpdateStyles(id, p.Styles())
			if err != nil {
				return changed, err
			}
			changed = changed || ok
		}
		return changed, nil
	})
}

// HandleKey runs the editor action bound to ev. It returns the action taken,
// or canvas.ActionNone for unbound keys.
func (s *Session) HandleKey(ev canvas.KeyEvent) (canvas.Action, error) {
	action := canvas.Shortcut(ev)
	var err error
	switch action {
	case canvas.ActionCopy:
		s.Copy()
	case canvas.ActionPaste:
		_, err = s.Paste()
	case canvas.ActionDuplicate:
		_, err = s.DuplicateSelected()
	case canvas.ActionUndo:
		s.Undo()
	case canvas.ActionRedo:
		s.Redo()
	case canvas.ActionDelete:
		s.DeleteSelected()
	case canvas.ActionDeselect:
		s.ClearSelection()
	case canvas.ActionSelectAll:
		s.SelectAll()
	case canvas.ActionMoveUp, canvas.ActionMoveDown:
		if id, ok := s.primary(); ok {
			dir := document.Up
			if action == canvas.ActionMoveDown {
				dir = document.Down
			}
			_, err = s.Move(id, dir)
		}
	}
	return action, err
}

// HandleGesture applies the panel bindings of a touch gesture.
func (s *Session) HandleGesture(g canvas.Gesture) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels.Apply(g)
}

// Panels returns the mobile panel state.
func (s *Session) Panels() canvas.PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels
}
