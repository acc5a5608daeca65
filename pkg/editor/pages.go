package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/aretw0/pagecraft/pkg/domain"
)

var (
	// ErrLastPage is returned when deleting the only page of a project.
	ErrLastPage = errors.New("cannot delete the last page")
	// ErrPageName is returned for a blank page name.
	ErrPageName = errors.New("page name is required")
)

// PageUpdate carries page settings to change. Nil fields are left alone.
type PageUpdate struct {
	Name       *string          `json:"name,omitempty"`
	Path       *string          `json:"path,omitempty"`
	Meta       *domain.PageMeta `json:"meta,omitempty"`
	HeadCode   *string          `json:"headCode,omitempty"`
	FooterCode *string          `json:"footerCode,omitempty"`
}

// Pages lists the project pages without their blocks.
func (s *Session) Pages() []domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Page, len(s.project.Pages))
	for i, p := range s.project.Pages {
		p.Blocks = nil
		out[i] = p
	}
	return out
}

// CurrentPage returns the id of the page being edited.
func (s *Session) CurrentPage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageID
}

// AddPage appends an empty page. An empty path is derived from the name and
// made unique within the project.
func (s *Session) AddPage(name, path string) (domain.Page, error) {
	var page domain.Page
	err := s.mutatePage("add_page", func() error {
		if strings.TrimSpace(name) == "" {
			return ErrPageName
		}
		if path == "" {
			path = "/" + slug.Make(name)
		}
		page = domain.Page{
			ID:     uuid.NewString(),
			Name:   name,
			Path:   s.uniquePath(path),
			Blocks: []domain.Block{},
		}
		s.project.Pages = append(s.project.Pages, page)
		return nil
	})
	return page, err
}

// SelectPage switches editing to pageID. The undo history and selection start
// over on the new page.
func (s *Session) SelectPage(pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageID == s.pageID {
		return nil
	}
	p, ok := s.project.Page(pageID)
	if !ok {
		return fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
	}
	s.syncPage()
	s.loadPage(p)
	s.logger.Debug("page selected", "project_id", s.projectID, "page_id", pageID)
	return nil
}

// UpdatePage changes page settings.
func (s *Session) UpdatePage(pageID string, u PageUpdate) error {
	return s.mutatePage("update_page", func() error {
		p, ok := s.project.Page(pageID)
		if !ok {
			return fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
		}
		if u.Name != nil {
			p.Name = *u.Name
		}
		if u.Path != nil && *u.Path != p.Path {
			p.Path = s.uniquePath(*u.Path)
		}
		if u.Meta != nil {
			p.Meta = *u.Meta
		}
		if u.HeadCode != nil {
			p.HeadCode = *u.HeadCode
		}
		if u.FooterCode != nil {
			p.FooterCode = *u.FooterCode
		}
		return nil
	})
}

// SetHomePage marks pageID as the only home page.
func (s *Session) SetHomePage(pageID string) error {
	return s.mutatePage("set_home", func() error {
		if _, ok := s.project.Page(pageID); !ok {
			return fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
		}
		for i := range s.project.Pages {
			s.project.Pages[i].IsHome = s.project.Pages[i].ID == pageID
		}
		return nil
	})
}

// DeletePage removes pageID. Deleting the home page promotes the first
// remaining page; deleting the current page switches to the home page.
func (s *Session) DeletePage(pageID string) error {
	return s.mutatePage("delete_page", func() error {
		if len(s.project.Pages) <= 1 {
			return ErrLastPage
		}
		s.syncPage()
		idx := -1
		for i, p := range s.project.Pages {
			if p.ID == pageID {
				idx = i
			}
		}
		if idx < 0 {
			return fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
		}
		wasHome := s.project.Pages[idx].IsHome
		s.project.Pages = append(s.project.Pages[:idx], s.project.Pages[idx+1:]...)
		if wasHome {
			s.project.Pages[0].IsHome = true
		}
		if pageID == s.pageID {
			home, _ := s.project.Home()
			s.loadPage(home)
		}
		return nil
	})
}

// ReplaceProject swaps the whole project, e.g. after a version rollback or an
// import. History and selection start over on the home page.
func (s *Session) ReplaceProject(data *domain.ProjectData) {
	_ = s.mutatePage("replace_project", func() error {
		if data == nil {
			data = domain.NewProjectData(s.project.Name)
		}
		s.adopt(data.Clone())
		return nil
	})
}

func (s *Session) uniquePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	taken := map[string]bool{}
	for _, p := range s.project.Pages {
		taken[p.Path] = true
	}
	if !taken[path] {
		return path
	}
	for n := 2; ; n++ {
		if c := fmt.Sprintf("%s-%d", path, n); !taken[c] {
			return c
		}
	}
}
