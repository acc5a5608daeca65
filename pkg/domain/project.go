package domain

import "time"

// PageMeta holds SEO metadata for a page.
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// Page is an ordered set of blocks plus page-level settings.
type Page struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	IsHome     bool     `json:"isHome"`
	Meta       PageMeta `json:"meta"`
	HeadCode   string   `json:"headCode,omitempty"`
	FooterCode string   `json:"footerCode,omitempty"`
	Blocks     []Block  `json:"blocks"`
}

// Clone deep-copies the page.
func (p Page) Clone() Page {
	out := p
	out.Blocks = CloneBlocks(p.Blocks)
	if out.Blocks == nil {
		out.Blocks = []Block{}
	}
	return out
}

// ProjectData is the persisted payload of a project: what saveProject
// writes and loadProject returns.
type ProjectData struct {
	Name     string         `json:"name"`
	Pages    []Page         `json:"pages"`
	Settings map[string]any `json:"settings,omitempty"`
}

// NewProjectData returns a project with a single empty home page.
func NewProjectData(name string) *ProjectData {
	return &ProjectData{
		Name: name,
		Pages: []Page{{
			ID:     "home",
			Name:   "Home",
			Path:   "/",
			IsHome: true,
			Blocks: []Block{},
		}},
		Settings: map[string]any{},
	}
}

// Clone deep-copies the project data.
func (d *ProjectData) Clone() *ProjectData {
	if d == nil {
		return nil
	}
	out := &ProjectData{
		Name:     d.Name,
		Settings: cloneValueMap(d.Settings),
		Pages:    make([]Page, len(d.Pages)),
	}
	for i, p := range d.Pages {
		out.Pages[i] = p.Clone()
	}
	return out
}

// Page returns the page with the given id.
func (d *ProjectData) Page(id string) (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].ID == id {
			return &d.Pages[i], true
		}
	}
	return nil, false
}

// Home returns the home page, or the first page when none is marked.
func (d *ProjectData) Home() (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].IsHome {
			return &d.Pages[i], true
		}
	}
	if len(d.Pages) > 0 {
		return &d.Pages[0], true
	}
	return nil, false
}

// BlockCount returns the total number of blocks across all pages.
func (d *ProjectData) BlockCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Blocks)
	}
	return n
}

// ProjectSummary is a listing entry.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pages     int       `json:"pages"`
	UpdatedAt time.Time `json:"updatedAt"`
}
