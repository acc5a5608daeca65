package document

import (
	"fmt"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// BringToFront raises id above every sibling.
func (d *Document) BringToFront(id domain.BlockID) (bool, error) {
	return d.restack(id, func(z int, sibs []*domain.Block) int {
		top := z
		for _, s := range sibs {
			if s.ID != id && zOf(s) >= top {
				top = zOf(s) + 1
			}
		}
		return top
	})
}

// SendToBack lowers id below every sibling.
func (d *Document) SendToBack(id domain.BlockID) (bool, error) {
	return d.restack(id, func(z int, sibs []*domain.Block) int {
		bottom := z
		for _, s := range sibs {
			if s.ID != id && zOf(s) <= bottom {
				bottom = zOf(s) - 1
			}
		}
		return bottom
	})
}

// BringForward raises id by one layer.
func (d *Document) BringForward(id domain.BlockID) (bool, error) {
	return d.restack(id, func(z int, _ []*domain.Block) int { return z + 1 })
}

// SendBackward lowers id by one layer.
func (d *Document) SendBackward(id domain.BlockID) (bool, error) {
	return d.restack(id, func(z int, _ []*domain.Block) int { return z - 1 })
}

func (d *Document) restack(id domain.BlockID, next func(z int, sibs []*domain.Block) int) (bool, error) {
	b, ok := d.blocks[id]
	if !ok {
		return false, nil
	}
	if b.Locked {
		return false, domain.ErrLocked
	}
	z := next(zOf(b), d.siblings(b.ParentID))
	if b.ZIndex != nil && *b.ZIndex == z {
		return false, nil
	}
	b.ZIndex = &z
	return true, nil
}

// zOf treats an unset z-index as 0.
func zOf(b *domain.Block) int {
	if b.ZIndex == nil {
		return 0
	}
	return *b.ZIndex
}

// CheckInvariants verifies that parent links resolve, that the tree is
// acyclic, that ids are below the id counter and that every sibling group is
// numbered 0..n-1.
func (d *Document) CheckInvariants() error {
	for id, b := range d.blocks {
		if b.ID != id {
			return fmt.Errorf("block %d stored under key %d", b.ID, id)
		}
		if b.ID >= d.nextID {
			return fmt.Errorf("block %d not below next id %d", b.ID, d.nextID)
		}
		if b.ParentID != nil {
			if _, ok := d.blocks[*b.ParentID]; !ok {
				return fmt.Errorf("block %d: %w: parent %d missing", b.ID, domain.ErrInvalidParent, *b.ParentID)
			}
			if d.cyclic(b.ID) {
				return fmt.Errorf("block %d: %w: cycle", b.ID, domain.ErrInvalidParent)
			}
		}
	}

	check := func(parent *domain.BlockID) error {
		for i, b := range d.siblings(parent) {
			if b.Position != i {
				return fmt.Errorf("block %d has position %d, want %d", b.ID, b.Position, i)
			}
		}
		return nil
	}
	if err := check(nil); err != nil {
		return err
	}
	for id := range d.blocks {
		parent := id
		if err := check(&parent); err != nil {
			return err
		}
	}
	return nil
}
