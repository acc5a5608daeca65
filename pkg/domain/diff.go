package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// DocumentDiff represents the changes between two block lists of one page.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	ProjectID string `json:"project_id"`
	PageID    string `json:"page_id"`

	// Upserted holds blocks that were added or whose fields changed.
	Upserted []Block `json:"upserted,omitempty"`

	// Removed holds ids present in the old list but not in the new one.
	Removed []BlockID `json:"removed,omitempty"`

	// Selection is set when the selection changed.
	Selection []BlockID `json:"selection,omitempty"`
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DocumentDiff) IsEmpty() bool {
	return d == nil || (len(d.Upserted) == 0 && len(d.Removed) == 0 && d.Selection == nil)
}

// Diff calculates the block-level difference between oldBlocks and newBlocks.
// A nil oldBlocks yields every new block as upserted (initial load).
// Returns nil when nothing changed.
func Diff(oldBlocks, newBlocks []Block) *DocumentDiff {
	diff := &DocumentDiff{}

	old := make(map[BlockID]Block, len(oldBlocks))
	for _, b := range oldBlocks {
		old[b.ID] = b
	}

	seen := make(map[BlockID]struct{}, len(newBlocks))
	for _, b := range newBlocks {
		seen[b.ID] = struct{}{}
		prev, ok := old[b.ID]
		if !ok || !reflect.DeepEqual(prev, b) {
			diff.Upserted = append(diff.Upserted, b.Clone())
		}
	}

	for _, b := range oldBlocks {
		if _, ok := seen[b.ID]; !ok {
			diff.Removed = append(diff.Removed, b.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// ProjectDiff lists the keys that differ between two project snapshots.
// Keys are "page/<pageID>" and "page/<pageID>/block/<blockID>".
type ProjectDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

// DiffProjects compares two snapshots page by page and block by block.
func DiffProjects(oldData, newData *ProjectData) ProjectDiff {
	oldKeys := flatten(oldData)
	newKeys := flatten(newData)

	res := ProjectDiff{Added: []string{}, Removed: []string{}, Changed: []string{}}
	for k, nv := range newKeys {
		ov, ok := oldKeys[k]
		switch {
		case !ok:
			res.Added = append(res.Added, k)
		case !reflect.DeepEqual(ov, nv):
			res.Changed = append(res.Changed, k)
		}
	}
	for k := range oldKeys {
		if _, ok := newKeys[k]; !ok {
			res.Removed = append(res.Removed, k)
		}
	}

	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	sort.Strings(res.Changed)
	return res
}

func flatten(d *ProjectData) map[string]any {
	out := make(map[string]any)
	if d == nil {
		return out
	}
	for _, p := range d.Pages {
		settings := p
		settings.Blocks = nil
		out["page/"+p.ID] = settings
		for _, b := range p.Blocks {
			out[fmt.Sprintf("page/%s/block/%d", p.ID, b.ID)] = b
		}
	}
	return out
}
