package canvas

import (
	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// DragItem is the payload carried by a block being dragged.
type DragItem struct {
	BlockID    domain.BlockID `json:"blockId"`
	BlockIndex int            `json:"blockIndex"`
}

// Drag captures the current index of id as a drag payload.
func Drag(doc *document.Document, id domain.BlockID) (DragItem, bool) {
	idx := doc.IndexOf(id)
	if idx < 0 {
		return DragItem{}, false
	}
	return DragItem{BlockID: id, BlockIndex: idx}, true
}

// DropDirection resolves the single move a drop onto targetID implies:
// down when the target's current index is greater than the captured index,
// up otherwise. It reports false when the drop is a no-op.
func DropDirection(doc *document.Document, item DragItem, targetID domain.BlockID) (document.Direction, bool) {
	target := doc.IndexOf(targetID)
	if target < 0 || !doc.Contains(item.BlockID) || target == item.BlockIndex {
		return "", false
	}
	if target > item.BlockIndex {
		return document.Down, true
	}
	return document.Up, true
}

// Drop applies DropDirection as one Move. Dropping far from the origin still
// moves only one step.
func Drop(doc *document.Document, item DragItem, targetID domain.BlockID) (bool, error) {
	dir, ok := DropDirection(doc, item, targetID)
	if !ok {
		return false, nil
	}
	return doc.Move(item.BlockID, dir)
}

// DropTarget describes where a catalog item landed. A nil Before appends to
// the end of Parent's children.
type DropTarget struct {
	Parent *domain.BlockID
	Before *domain.BlockID
}

// DropFromCatalog instantiates item at target and returns the new block id.
func DropFromCatalog(doc *document.Document, item domain.CatalogItem, target DropTarget) (domain.BlockID, error) {
	b := item.NewBlock()
	if target.Before != nil {
		if anchor, ok := doc.Get(*target.Before); ok {
			return doc.Insert(b, anchor.ParentID, doc.IndexOf(anchor.ID))
		}
	}
	return doc.Append(b, target.Parent)
}
