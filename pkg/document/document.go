package document

import (
	"sort"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Direction is a single-step move among siblings.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Document is the block arena of one page: a flat table keyed by id.
// Children are resolved by bucketing ParentID, never through owning pointers.
//
// A Document is not safe for concurrent use; the editor session serializes access.
type Document struct {
	blocks map[domain.BlockID]*domain.Block
	nextID domain.BlockID
}

// New creates an empty document whose first id is 1.
func New() *Document {
	return &Document{
		blocks: make(map[domain.BlockID]*domain.Block),
		nextID: 1,
	}
}

// FromBlocks creates a document from persisted blocks. See Restore.
func FromBlocks(blocks []domain.Block) *Document {
	d := New()
	d.Restore(blocks)
	return d
}

// Restore replaces the contents with a deep copy of blocks.
//
// Parent references to missing blocks, and references that form a cycle, are
// treated as top-level. Every sibling group is then renumbered 0..n-1 in its
// previous position order. The id counter never moves backwards.
func (d *Document) Restore(blocks []domain.Block) {
	d.blocks = make(map[domain.BlockID]*domain.Block, len(blocks))
	for _, b := range blocks {
		c := b.Clone()
		normalize(&c)
		d.blocks[c.ID] = &c
		if c.ID >= d.nextID {
			d.nextID = c.ID + 1
		}
	}

	for _, b := range d.blocks {
		if b.ParentID == nil {
			continue
		}
		if _, ok := d.blocks[*b.ParentID]; !ok || d.cyclic(b.ID) {
			b.ParentID = nil
		}
	}
	d.renumberAll()
}

// Len returns the number of blocks, nested ones included.
func (d *Document) Len() int {
	return len(d.blocks)
}

// NextID returns the id the next created block will receive.
func (d *Document) NextID() domain.BlockID {
	return d.nextID
}

// Reserve raises the id counter to at least next. It never lowers it, so ids
// allocated elsewhere in the project are not handed out again.
func (d *Document) Reserve(next domain.BlockID) {
	if next > d.nextID {
		d.nextID = next
	}
}

// Contains reports whether id exists.
func (d *Document) Contains(id domain.BlockID) bool {
	_, ok := d.blocks[id]
	return ok
}

// Get returns a copy of the block.
func (d *Document) Get(id domain.BlockID) (domain.Block, bool) {
	b, ok := d.blocks[id]
	if !ok {
		return domain.Block{}, false
	}
	return b.Clone(), true
}

// Lookup is Get with a domain.ErrNotFound error for adapters.
func (d *Document) Lookup(id domain.BlockID) (domain.Block, error) {
	b, ok := d.Get(id)
	if !ok {
		return domain.Block{}, domain.ErrNotFound
	}
	return b, nil
}

// Children returns copies of the children of parent in position order.
// A nil parent selects the top-level blocks.
func (d *Document) Children(parent *domain.BlockID) []domain.Block {
	sibs := d.siblings(parent)
	out := make([]domain.Block, len(sibs))
	for i, b := range sibs {
		out[i] = b.Clone()
	}
	return out
}

// IndexOf returns the position of id among its siblings, or -1.
func (d *Document) IndexOf(id domain.BlockID) int {
	b, ok := d.blocks[id]
	if !ok {
		return -1
	}
	for i, s := range d.siblings(b.ParentID) {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Descendants returns the ids below id in pre-order, id excluded.
func (d *Document) Descendants(id domain.BlockID) []domain.BlockID {
	var out []domain.BlockID
	var walk func(domain.BlockID)
	walk = func(parent domain.BlockID) {
		for _, c := range d.siblings(&parent) {
			out = append(out, c.ID)
			walk(c.ID)
		}
	}
	walk(id)
	return out
}

// Blocks returns a deep copy of every block in tree pre-order: top-level
// blocks by position, each followed by its subtree.
func (d *Document) Blocks() []domain.Block {
	out := make([]domain.Block, 0, len(d.blocks))
	var walk func(parent *domain.BlockID)
	walk = func(parent *domain.BlockID) {
		for _, b := range d.siblings(parent) {
			out = append(out, b.Clone())
			walk(&b.ID)
		}
	}
	walk(nil)
	return out
}

// Snapshot is Blocks under the name history uses.
func (d *Document) Snapshot() []domain.Block {
	return d.Blocks()
}

// Subtree returns copies of id and its descendants in pre-order.
func (d *Document) Subtree(id domain.BlockID) []domain.Block {
	root, ok := d.blocks[id]
	if !ok {
		return nil
	}
	out := []domain.Block{root.Clone()}
	for _, did := range d.Descendants(id) {
		out = append(out, d.blocks[did].Clone())
	}
	return out
}

func (d *Document) allocate() domain.BlockID {
	id := d.nextID
	d.nextID++
	return id
}

// siblings returns the live blocks under parent sorted by position.
func (d *Document) siblings(parent *domain.BlockID) []*domain.Block {
	var out []*domain.Block
	for _, b := range d.blocks {
		if b.HasParent(parent) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func renumber(group []*domain.Block) {
	for i, b := range group {
		b.Position = i
	}
}

func (d *Document) renumberAll() {
	renumber(d.siblings(nil))
	for id := range d.blocks {
		parent := id
		renumber(d.siblings(&parent))
	}
}

// cyclic reports whether following parent links from id returns to id.
func (d *Document) cyclic(id domain.BlockID) bool {
	seen := map[domain.BlockID]bool{id: true}
	cur := d.blocks[id]
	for cur != nil && cur.ParentID != nil {
		pid := *cur.ParentID
		if seen[pid] {
			return true
		}
		seen[pid] = true
		cur = d.blocks[pid]
	}
	return false
}

// isAncestor reports whether anc is id or one of id's ancestors.
func (d *Document) isAncestor(anc, id domain.BlockID) bool {
	cur, ok := d.blocks[id]
	for ok {
		if cur.ID == anc {
			return true
		}
		if cur.ParentID == nil {
			return false
		}
		cur, ok = d.blocks[*cur.ParentID]
	}
	return false
}

func (d *Document) parentLocked(b *domain.Block) bool {
	if b.ParentID == nil {
		return false
	}
	p, ok := d.blocks[*b.ParentID]
	return ok && p.Locked
}

func normalize(b *domain.Block) {
	if b.Content == nil {
		b.Content = map[string]any{}
	}
	if b.Styles == nil {
		b.Styles = domain.StyleMap{}
	}
}
