package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/pagecraft/pkg/document"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// FormatVersion is written into every export.
const FormatVersion = "1.0.0"

// Envelope is the JSON document produced by Export.
type Envelope struct {
	ProjectName string         `json:"projectName"`
	Pages       []domain.Page  `json:"pages"`
	Settings    map[string]any `json:"settings,omitempty"`
	Version     string         `json:"version"`
	ExportedAt  time.Time      `json:"exportedAt"`
}

// Export renders data as an indented JSON envelope stamped with now.
func Export(data *domain.ProjectData, now time.Time) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("export: nil project")
	}
	c := data.Clone()
	env := Envelope{
		ProjectName: c.Name,
		Pages:       c.Pages,
		Settings:    c.Settings,
		Version:     FormatVersion,
		ExportedAt:  now.UTC(),
	}
	return json.MarshalIndent(env, "", "  ")
}

// Import parses and validates an exported document. Malformed data is
// rejected as a whole.
func Import(raw []byte) (*domain.ProjectData, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, aggregate(&ValidationError{Key: "$", Reason: err.Error()})
	}
	return Decode(m)
}

// Decode validates raw and converts it into project data. A bare blocks
// array becomes a single home page. Blocks without an id receive fresh ids,
// sibling positions are renumbered and exactly one page is marked home.
func Decode(raw map[string]any) (*domain.ProjectData, error) {
	if err := ValidateProject(raw); err != nil {
		return nil, err
	}

	name, _ := raw["projectName"].(string)
	if name == "" {
		name, _ = raw["name"].(string)
	}
	data := domain.NewProjectData(name)
	if s, ok := raw["settings"].(map[string]any); ok {
		data.Settings = s
	}

	pagesRaw, ok := raw["pages"].([]any)
	if !ok {
		pagesRaw = []any{map[string]any{
			"id":     "home",
			"name":   "Home",
			"path":   "/",
			"isHome": true,
			"blocks": raw["blocks"],
		}}
	}

	var pages []domain.Page
	if err := decode(withDefaults(pagesRaw), &pages); err != nil {
		return nil, aggregate(&ValidationError{Key: "pages", Reason: err.Error()})
	}
	if len(pages) > 0 {
		data.Pages = pages
	}
	normalizePages(data)
	return data, nil
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// withDefaults copies pages and blocks, filling fields whose zero value
// would change meaning.
func withDefaults(pages []any) []any {
	out := make([]any, len(pages))
	for i, p := range pages {
		page := copyMap(p.(map[string]any))
		blocks, _ := page["blocks"].([]any)
		filled := make([]any, len(blocks))
		for j, b := range blocks {
			block := copyMap(b.(map[string]any))
			if _, ok := block["visible"]; !ok {
				block["visible"] = true
			}
			filled[j] = block
		}
		page["blocks"] = filled
		out[i] = page
	}
	return out
}

// normalizePages fixes page ids and the home flag and makes block ids unique
// across the project. Blocks without an id, and blocks whose id an earlier
// page already uses, get fresh ids above the project maximum; parent links
// within the page follow the renamed ids.
func normalizePages(data *domain.ProjectData) {
	var next domain.BlockID = 1
	for _, p := range data.Pages {
		for _, b := range p.Blocks {
			if b.ID >= next {
				next = b.ID + 1
			}
		}
	}

	home := -1
	seen := map[domain.BlockID]bool{}
	for i := range data.Pages {
		p := &data.Pages[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("page-%d", i+1)
		}
		if p.IsHome {
			if home >= 0 {
				p.IsHome = false
			} else {
				home = i
			}
		}

		renamed := map[domain.BlockID]domain.BlockID{}
		for j := range p.Blocks {
			b := &p.Blocks[j]
			switch {
			case b.ID <= 0:
				b.ID = next
				next++
			case seen[b.ID]:
				if _, ok := renamed[b.ID]; !ok {
					renamed[b.ID] = next
					next++
				}
				b.ID = renamed[b.ID]
			}
		}
		for j := range p.Blocks {
			if parent := p.Blocks[j].ParentID; parent != nil {
				if id, ok := renamed[*parent]; ok {
					p.Blocks[j].ParentID = id.Ptr()
				}
			}
		}
		p.Blocks = document.FromBlocks(p.Blocks).Blocks()
		for _, b := range p.Blocks {
			seen[b.ID] = true
		}
	}
	if home < 0 && len(data.Pages) > 0 {
		data.Pages[0].IsHome = true
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
