package editor

import (
	"context"
	"fmt"

	"github.com/aretw0/pagecraft/pkg/canvas"
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/style"
)

// Block returns a copy of a block on the current page.
func (s *Session) Block(id domain.BlockID) (domain.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Lookup(id)
}

// Blocks returns the current page in tree pre-order.
func (s *Session) Blocks() []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Blocks()
}

// Insert adds b under parent at index and selects it.
func (s *Session) Insert(b domain.Block, parent *domain.BlockID, index int) (domain.BlockID, error) {
	var id domain.BlockID
	err := s.mutate("insert", "", func() (bool, error) {
		var err error
		id, err = s.doc.Insert(b, parent, index)
		if err != nil {
			return false, err
		}
		s.sel.Click(id)
		return true, nil
	})
	return id, err
}

// AddBlock drops a palette item at target and selects the new block.
func (s *Session) AddBlock(item domain.CatalogItem, target canvas.DropTarget) (domain.BlockID, error) {
	var id domain.BlockID
	err := s.mutate("add_block", "", func() (bool, error) {
		var err error
		id, err = canvas.DropFromCatalog(s.doc, item, target)
		if err != nil {
			return false, err
		}
		s.sel.Click(id)
		return true, nil
	})
	return id, err
}

// AddFromCatalog resolves itemID in catalog and adds it like AddBlock.
func (s *Session) AddFromCatalog(ctx context.Context, catalog ports.Catalog, itemID string, target canvas.DropTarget) (domain.BlockID, error) {
	item, err := catalog.Item(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("catalog item %s: %w", itemID, err)
	}
	return s.AddBlock(item, target)
}

// Delete removes id with its subtree. Missing ids are a no-op.
func (s *Session) Delete(id domain.BlockID) bool {
	var ok bool
	_ = s.mutate("delete", "", func() (bool, error) {
		ok = s.doc.Delete(id)
		return ok, nil
	})
	return ok
}

// DeleteSelected removes every selected block. It returns how many selected
// roots were removed.
func (s *Session) DeleteSelected() int {
	n := 0
	_ = s.mutate("delete", "", func() (bool, error) {
		for _, id := range s.sel.IDs() {
			if s.doc.Delete(id) {
				n++
			}
		}
		s.sel.Clear()
		return n > 0, nil
	})
	return n
}

// Move swaps id with its neighbour.
func (s *Session) Move(id domain.BlockID, dir document.Direction) (bool, error) {
	return s.change("move", "", func() (bool, error) { return s.doc.Move(id, dir) })
}

// MoveTo places id at index among its siblings.
func (s *Session) MoveTo(id domain.BlockID, index int) (bool, error) {
	return s.change("move", "", func() (bool, error) { return s.doc.MoveTo(id, index) })
}

// Reparent moves id under parent at index.
func (s *Session) Reparent(id domain.BlockID, parent *domain.BlockID, index int) (bool, error) {
	return s.change("reparent", "", func() (bool, error) { return s.doc.Reparent(id, parent, index) })
}

// Drag starts a reorder drag of id.
func (s *Session) Drag(id domain.BlockID) (canvas.DragItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canvas.Drag(s.doc, id)
}

// Drop finishes a reorder drag over targetID. The block moves one step.
func (s *Session) Drop(item canvas.DragItem, targetID domain.BlockID) (bool, error) {
	return s.change("reorder", "", func() (bool, error) { return canvas.Drop(s.doc, item, targetID) })
}

// UpdateContent merges patch into the block content. Consecutive updates of
// the same block within the history window form one undo step.
func (s *Session) UpdateContent(id domain.BlockID, patch map[string]any) (bool, error) {
	return s.change("update_content", fmt.Sprintf("content/%d", id), func() (bool, error) {
		return s.doc.UpdateContent(id, patch)
	})
}

// UpdateStyles merges patch into the base styles.
func (s *Session) UpdateStyles(id domain.BlockID, patch domain.StyleMap) (bool, error) {
	return s.change("update_styles", fmt.Sprintf("styles/%d", id), func() (bool, error) {
		return s.doc.UpdateStyles(id, patch)
	})
}

// UpdateResponsiveStyles merges patch into the override for the current
// preview breakpoint. On a desktop breakpoint the base styles are edited.
func (s *Session) UpdateResponsiveStyles(id domain.BlockID, patch domain.StyleMap) (bool, error) {
	return s.change("update_styles", fmt.Sprintf("styles/%d", id), func() (bool, error) {
		if style.IsKnown(s.bp) && style.DeviceOf(s.bp) == domain.DeviceDesktop {
			return s.doc.UpdateStyles(id, patch)
		}
		return s.doc.UpdateResponsiveStyles(id, s.bp, patch)
	})
}

// SetDeviceVisibility hides or shows id on a device class.
func (s *Session) SetDeviceVisibility(id domain.BlockID, device domain.Device, hidden bool) (bool, error) {
	return s.change("visibility", "", func() (bool, error) {
		return s.doc.SetDeviceVisibility(id, device, hidden)
	})
}

// SetAnimation replaces the animation and hover settings of id.
func (s *Session) SetAnimation(id domain.BlockID, animation, hover map[string]any) (bool, error) {
	return s.change("animation", "", func() (bool, error) {
		return s.doc.SetAnimation(id, animation, hover)
	})
}

// Rename sets the layer name of id.
func (s *Session) Rename(id domain.BlockID, name string) bool {
	ok, _ := s.change("rename", "", func() (bool, error) { return s.doc.Rename(id, name), nil })
	return ok
}

// SetVisible toggles the layer visibility of id.
func (s *Session) SetVisible(id domain.BlockID, visible bool) bool {
	ok, _ := s.change("visible", "", func() (bool, error) { return s.doc.SetVisible(id, visible), nil })
	return ok
}

// SetLocked toggles the lock of id.
func (s *Session) SetLocked(id domain.BlockID, locked bool) bool {
	ok, _ := s.change("lock", "", func() (bool, error) { return s.doc.SetLocked(id, locked), nil })
	return ok
}

// BringToFront raises id above its siblings.
func (s *Session) BringToFront(id domain.BlockID) (bool, error) {
	return s.change("z_order", "", func() (bool, error) { return s.doc.BringToFront(id) })
}

// SendToBack lowers id below its siblings.
func (s *Session) SendToBack(id domain.BlockID) (bool, error) {
	return s.change("z_order", "", func() (bool, error) { return s.doc.SendToBack(id) })
}

// BringForward raises id by one layer.
func (s *Session) BringForward(id domain.BlockID) (bool, error) {
	return s.change("z_order", "", func() (bool, error) { return s.doc.BringForward(id) })
}

// SendBackward lowers id by one layer.
func (s *Session) SendBackward(id domain.BlockID) (bool, error) {
	return s.change("z_order", "", func() (bool, error) { return s.doc.SendBackward(id) })
}

// Duplicate copies id and its subtree next to it and selects the copy.
func (s *Session) Duplicate(id domain.BlockID) (domain.BlockID, error) {
	var dup domain.BlockID
	err := s.mutate("duplicate", "", func() (bool, error) {
		nid, ok, err := s.doc.Duplicate(id)
		if err != nil || !ok {
			return false, err
		}
		dup = nid
		s.sel.Click(nid)
		return true, nil
	})
	return dup, err
}

// DuplicateSelected duplicates the primary selection.
func (s *Session) DuplicateSelected() (domain.BlockID, error) {
	id, ok := s.primary()
	if !ok {
		return 0, nil
	}
	return s.Duplicate(id)
}

// Copy places the selected blocks on the clipboard. It returns the number of
// copied roots.
func (s *Session) Copy() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.Empty() {
		return 0
	}
	return s.clip.Copy(s.doc, s.sel.IDs())
}

// Paste inserts the clipboard after the primary selection and selects the
// pasted blocks.
func (s *Session) Paste() ([]domain.BlockID, error) {
	var ids []domain.BlockID
	err := s.mutate("paste", "", func() (bool, error) {
		var anchor *domain.BlockID
		if id, ok := s.sel.Primary(); ok {
			anchor = id.Ptr()
		}
		var err error
		ids, err = s.clip.Paste(s.doc, anchor)
		if err != nil || len(ids) == 0 {
			return false, err
		}
		s.sel.SelectAll(ids)
		return true, nil
	})
	return ids, err
}

// change adapts a document mutation returning (changed, err) to mutate.
func (s *Session) change(op, key string, fn func() (bool, error)) (bool, error) {
	var changed bool
	err := s.mutate(op, key, func() (bool, error) {
		var err error
		changed, err = fn()
		return changed, err
	})
	return changed, err
}

func (s *Session) primary() (domain.BlockID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Primary()
}
