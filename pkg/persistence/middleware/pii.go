package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.ProjectStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks project settings and block
// content values whose keys match any of the patterns. Masking happens on the
// way into the backend; the caller's data is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ProjectStore) ports.ProjectStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, projectID string, data *domain.ProjectData) error {
	if len(m.patterns) == 0 {
		return m.next.Save(ctx, projectID, data)
	}

	cloned := data.Clone()
	maskMap(cloned.Settings, m.patterns)
	for i := range cloned.Pages {
		for j := range cloned.Pages[i].Blocks {
			maskMap(cloned.Pages[i].Blocks[j].Content, m.patterns)
		}
	}
	return m.next.Save(ctx, projectID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, projectID string) (*domain.ProjectData, error) {
	return m.next.Load(ctx, projectID)
}

func (m *piiMiddleware) Delete(ctx context.Context, projectID string) error {
	return m.next.Delete(ctx, projectID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if im, ok := item.(map[string]any); ok {
					maskMap(im, patterns)
				}
			}
		}
	}
}
