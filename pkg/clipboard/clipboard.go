// Package clipboard holds structural copies of blocks for paste.
package clipboard

import (
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Clipboard is a value snapshot of copied subtrees. Later document edits
// never reach it, and pasting never mutates it.
type Clipboard struct {
	blocks []domain.Block
	roots  int
}

// New returns an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// Copy captures the subtrees rooted at ids, in document order. Ids nested
// under another copied id are covered by their ancestor. Unknown ids are
// skipped. It returns the number of captured roots; zero leaves the clipboard
// unchanged.
func (c *Clipboard) Copy(doc *document.Document, ids []domain.BlockID) int {
	want := make(map[domain.BlockID]bool, len(ids))
	for _, id := range ids {
		if doc.Contains(id) {
			want[id] = true
		}
	}
	if len(want) == 0 {
		return 0
	}

	var captured []domain.Block
	roots := 0
	covered := map[domain.BlockID]bool{}
	for _, b := range doc.Blocks() {
		if !want[b.ID] || covered[b.ID] {
			continue
		}
		sub := doc.Subtree(b.ID)
		for _, s := range sub {
			covered[s.ID] = true
		}
		captured = append(captured, sub...)
		roots++
	}

	c.blocks = captured
	c.roots = roots
	return roots
}

// Paste inserts fresh copies of the clipboard right after the block after, at
// its nesting level. A nil or unknown after appends at the top level. It
// returns the ids of the pasted roots.
func (c *Clipboard) Paste(doc *document.Document, after *domain.BlockID) ([]domain.BlockID, error) {
	if !c.CanPaste() {
		return nil, nil
	}

	var parent *domain.BlockID
	index := len(doc.Children(nil))
	if after != nil {
		if anchor, ok := doc.Get(*after); ok {
			parent = anchor.ParentID
			index = doc.IndexOf(anchor.ID) + 1
		}
	}
	return doc.InsertTree(c.blocks, parent, index)
}

// CanPaste reports whether the clipboard holds anything.
func (c *Clipboard) CanPaste() bool {
	return len(c.blocks) > 0
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.blocks = nil
	c.roots = 0
}

// Len returns the number of copied roots.
func (c *Clipboard) Len() int {
	return c.roots
}

// Blocks returns a copy of the captured blocks with their original ids.
func (c *Clipboard) Blocks() []domain.Block {
	return domain.CloneBlocks(c.blocks)
}
