package document

import (
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/style"
)

// Insert adds a copy of b under parent at index and returns its fresh id.
// The index is clamped into [0, siblingCount]. Any id already set on b is ignored.
func (d *Document) Insert(b domain.Block, parent *domain.BlockID, index int) (domain.BlockID, error) {
	if err := d.checkParent(parent); err != nil {
		return 0, err
	}

	c := b.Clone()
	normalize(&c)
	c.ID = d.allocate()
	c.ParentID = copyID(parent)

	group := d.siblings(parent)
	index = clamp(index, 0, len(group))
	d.blocks[c.ID] = &c
	renumber(splice(group, index, &c))
	return c.ID, nil
}

// Append inserts b as the last child of parent.
func (d *Document) Append(b domain.Block, parent *domain.BlockID) (domain.BlockID, error) {
	return d.Insert(b, parent, len(d.siblings(parent)))
}

// Delete removes id and all of its descendants. Missing ids are a no-op.
func (d *Document) Delete(id domain.BlockID) bool {
	b, ok := d.blocks[id]
	if !ok {
		return false
	}
	parent := copyID(b.ParentID)
	for _, did := range d.Descendants(id) {
		delete(d.blocks, did)
	}
	delete(d.blocks, id)
	renumber(d.siblings(parent))
	return true
}

// Move swaps id with its neighbour in the given direction. It is a no-op at
// the boundary and for missing ids.
func (d *Document) Move(id domain.BlockID, dir Direction) (bool, error) {
	b, ok := d.blocks[id]
	if !ok {
		return false, nil
	}
	if b.Locked || d.parentLocked(b) {
		return false, domain.ErrLocked
	}

	group := d.siblings(b.ParentID)
	idx := indexIn(group, id)
	target := idx + 1
	if dir == Up {
		target = idx - 1
	}
	if target < 0 || target >= len(group) {
		return false, nil
	}
	group[idx], group[target] = group[target], group[idx]
	renumber(group)
	return true, nil
}

// MoveTo splices id to index within its sibling group.
func (d *Document) MoveTo(id domain.BlockID, index int) (bool, error) {
	b, ok := d.blocks[id]
	if !ok {
		return false, nil
	}
	if b.Locked || d.parentLocked(b) {
		return false, domain.ErrLocked
	}

	group := d.siblings(b.ParentID)
	idx := indexIn(group, id)
	index = clamp(index, 0, len(group)-1)
	if idx == index {
		return false, nil
	}
	rest := append(group[:idx:idx], group[idx+1:]...)
	renumber(splice(rest, index, b))
	return true, nil
}

// ReorderByDrop applies a drag-reorder drop: one step toward targetIndex,
// down when the target lies after the block's current index, up otherwise.
func (d *Document) ReorderByDrop(draggedID domain.BlockID, targetIndex int) (bool, error) {
	current := d.IndexOf(draggedID)
	if current < 0 || current == targetIndex {
		return false, nil
	}
	dir := Up
	if targetIndex > current {
		dir = Down
	}
	return d.Move(draggedID, dir)
}

// Reparent moves id under a new parent at index.
func (d *Document) Reparent(id domain.BlockID, parent *domain.BlockID, index int) (bool, error) {
	b, ok := d.blocks[id]
	if !ok {
		return false, nil
	}
	if parent != nil && d.isAncestor(id, *parent) {
		return false, domain.ErrInvalidParent
	}
	if err := d.checkParent(parent); err != nil {
		return false, err
	}
	if b.Locked || d.parentLocked(b) {
		return false, domain.ErrLocked
	}

	old := copyID(b.ParentID)
	b.ParentID = nil
	b.Position = -1
	renumber(d.siblings(old))

	group := d.siblings(parent)
	b.ParentID = copyID(parent)
	renumber(splice(group, clamp(index, 0, len(group)), b))
	return true, nil
}

// UpdateContent shallow-merges patch into the block content. A nil value
// removes the key.
func (d *Document) UpdateContent(id domain.BlockID, patch map[string]any) (bool, error) {
	b, err := d.editable(id)
	if b == nil || err != nil {
		return false, err
	}
	b.Content = mergeInto(b.Content, patch)
	return true, nil
}

// UpdateStyles shallow-merges patch into the base styles. A nil value removes the key.
func (d *Document) UpdateStyles(id domain.BlockID, patch domain.StyleMap) (bool, error) {
	b, err := d.editable(id)
	if b == nil || err != nil {
		return false, err
	}
	b.Styles = mergeInto(b.Styles, patch)
	return true, nil
}

// UpdateResponsiveStyles merges patch into the override layer for bp: the
// device map for known breakpoints, the named custom map otherwise.
func (d *Document) UpdateResponsiveStyles(id domain.BlockID, bp style.Breakpoint, patch domain.StyleMap) (bool, error) {
	b, err := d.editable(id)
	if b == nil || err != nil {
		return false, err
	}
	if bp == style.Custom || !style.IsKnown(bp) {
		b.ResponsiveStyles = style.UpdateCustom(b.ResponsiveStyles, string(bp), patch)
	} else {
		b.ResponsiveStyles = style.UpdateDevice(b.ResponsiveStyles, style.DeviceOf(bp), patch)
	}
	return true, nil
}

// SetDeviceVisibility toggles the synthetic visibility key in the base styles.
func (d *Document) SetDeviceVisibility(id domain.BlockID, device domain.Device, hidden bool) (bool, error) {
	b, err := d.editable(id)
	if b == nil || err != nil {
		return false, err
	}
	b.Styles = style.SetVisibility(b.Styles, device, hidden)
	return true, nil
}

// SetAnimation replaces the animation settings of a block.
func (d *Document) SetAnimation(id domain.BlockID, animation, hover map[string]any) (bool, error) {
	b, err := d.editable(id)
	if b == nil || err != nil {
		return false, err
	}
	b.Animation = mergeInto(nil, animation)
	b.HoverEffects = mergeInto(nil, hover)
	return true, nil
}

// Duplicate clones id and its subtree with fresh ids and inserts the copy
// right after the source. It returns the id of the new root.
func (d *Document) Duplicate(id domain.BlockID) (domain.BlockID, bool, error) {
	b, ok := d.blocks[id]
	if !ok {
		return 0, false, nil
	}
	ids, err := d.InsertTree(d.Subtree(id), b.ParentID, d.IndexOf(id)+1)
	if err != nil {
		return 0, false, err
	}
	return ids[0], true, nil
}

// InsertTree inserts a forest of block copies with fresh ids. Parent links
// inside the forest are rewritten to the new ids; roots (blocks whose parent is
// not part of the forest) are placed consecutively under parent starting at
// index, in their input order. It returns the new root ids.
func (d *Document) InsertTree(blocks []domain.Block, parent *domain.BlockID, index int) ([]domain.BlockID, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	if err := d.checkParent(parent); err != nil {
		return nil, err
	}

	remap := make(map[domain.BlockID]domain.BlockID, len(blocks))
	for _, b := range blocks {
		remap[b.ID] = d.allocate()
	}

	var roots []*domain.Block
	touched := make(map[domain.BlockID]bool)
	for _, src := range blocks {
		c := src.Clone()
		normalize(&c)
		c.ID = remap[src.ID]
		if src.ParentID != nil {
			if np, ok := remap[*src.ParentID]; ok {
				c.ParentID = &np
				touched[np] = true
				d.blocks[c.ID] = &c
				continue
			}
		}
		c.ParentID = copyID(parent)
		roots = append(roots, &c)
	}

	group := d.siblings(parent)
	index = clamp(index, 0, len(group))
	for i, r := range roots {
		d.blocks[r.ID] = r
		group = splice(group, index+i, r)
	}
	renumber(group)
	for pid := range touched {
		p := pid
		renumber(d.siblings(&p))
	}

	ids := make([]domain.BlockID, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	return ids, nil
}

// Rename sets the display name. Allowed on locked blocks.
func (d *Document) Rename(id domain.BlockID, name string) bool {
	b, ok := d.blocks[id]
	if !ok {
		return false
	}
	b.Name = name
	return true
}

// SetVisible toggles render visibility. Allowed on locked blocks.
func (d *Document) SetVisible(id domain.BlockID, visible bool) bool {
	b, ok := d.blocks[id]
	if !ok {
		return false
	}
	b.Visible = visible
	return true
}

// SetLocked toggles the mutation lock.
func (d *Document) SetLocked(id domain.BlockID, locked bool) bool {
	b, ok := d.blocks[id]
	if !ok {
		return false
	}
	b.Locked = locked
	return true
}

func (d *Document) checkParent(parent *domain.BlockID) error {
	if parent == nil {
		return nil
	}
	p, ok := d.blocks[*parent]
	if !ok {
		return domain.ErrInvalidParent
	}
	if p.Locked {
		return domain.ErrLocked
	}
	return nil
}

// editable returns the live block for a content or style edit.
// A missing id yields (nil, nil).
func (d *Document) editable(id domain.BlockID) (*domain.Block, error) {
	b, ok := d.blocks[id]
	if !ok {
		return nil, nil
	}
	if b.Locked {
		return nil, domain.ErrLocked
	}
	return b, nil
}

func splice(group []*domain.Block, index int, b *domain.Block) []*domain.Block {
	group = append(group, nil)
	copy(group[index+1:], group[index:])
	group[index] = b
	return group
}

func indexIn(group []*domain.Block, id domain.BlockID) int {
	for i, b := range group {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func mergeInto[M ~map[string]any](dst M, patch M) M {
	out := make(M, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func copyID(id *domain.BlockID) *domain.BlockID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
