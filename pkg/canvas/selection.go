package canvas

import "github.com/aretw0/pagecraft/pkg/domain"

// Selection is the primary selected block plus the multi-select set.
// The primary, when set, is always a member of the set.
type Selection struct {
	primary *domain.BlockID
	ids     []domain.BlockID
}

// Click selects id alone.
func (s *Selection) Click(id domain.BlockID) {
	s.primary = id.Ptr()
	s.ids = []domain.BlockID{id}
}

// Toggle flips membership of id in the set. An added id becomes the primary.
// When the removed id was the primary, the most recently added remaining
// member takes over, or the selection becomes empty.
func (s *Selection) Toggle(id domain.BlockID) {
	if i := s.index(id); i >= 0 {
		s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
		if s.primary != nil && *s.primary == id {
			s.primary = s.last()
		}
		return
	}
	s.ids = append(s.ids, id)
	s.primary = id.Ptr()
}

// Select dispatches a click with or without the multi-select modifier.
func (s *Selection) Select(id domain.BlockID, multi bool) {
	if multi {
		s.Toggle(id)
		return
	}
	s.Click(id)
}

// SelectAll selects ids with the first one as primary.
func (s *Selection) SelectAll(ids []domain.BlockID) {
	s.Set(nil, ids)
	if len(s.ids) > 0 {
		s.primary = s.ids[0].Ptr()
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.primary = nil
	s.ids = nil
}

// Prune drops ids for which exists reports false, keeping the primary
// invariant.
func (s *Selection) Prune(exists func(domain.BlockID) bool) {
	kept := s.ids[:0:0]
	for _, id := range s.ids {
		if exists(id) {
			kept = append(kept, id)
		}
	}
	s.ids = kept
	if s.primary != nil && !exists(*s.primary) {
		s.primary = s.last()
	}
}

// Set replaces the selection, e.g. when restoring history. Duplicate ids are
// dropped and a primary outside ids is added to the set.
func (s *Selection) Set(primary *domain.BlockID, ids []domain.BlockID) {
	s.ids = nil
	seen := map[domain.BlockID]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
	s.primary = nil
	if primary != nil {
		p := *primary
		if !seen[p] {
			s.ids = append(s.ids, p)
		}
		s.primary = &p
	}
}

// Primary returns the primary selected id.
func (s *Selection) Primary() (domain.BlockID, bool) {
	if s.primary == nil {
		return 0, false
	}
	return *s.primary, true
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []domain.BlockID {
	return append([]domain.BlockID(nil), s.ids...)
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id domain.BlockID) bool {
	return s.index(id) >= 0
}

// Len returns the number of selected blocks.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return len(s.ids) == 0
}

func (s *Selection) index(id domain.BlockID) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (s *Selection) last() *domain.BlockID {
	if len(s.ids) == 0 {
		return nil
	}
	return s.ids[len(s.ids)-1].Ptr()
}
