package style

import (
	"reflect"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Clean drops empty override maps. It returns nil when nothing is left.
func Clean(rs *domain.ResponsiveStyles) *domain.ResponsiveStyles {
	if rs == nil {
		return nil
	}
	out := &domain.ResponsiveStyles{}
	if len(rs.Desktop) > 0 {
		out.Desktop = rs.Desktop
	}
	if len(rs.Tablet) > 0 {
		out.Tablet = rs.Tablet
	}
	if len(rs.Mobile) > 0 {
		out.Mobile = rs.Mobile
	}
	for name, m := range rs.Custom {
		if len(m) == 0 {
			continue
		}
		if out.Custom == nil {
			out.Custom = make(map[string]domain.StyleMap)
		}
		out.Custom[name] = m
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

// Prune removes override keys whose value is identical to the base style and
// then drops empty maps. This is a maintenance pass; writes never call it.
// It reports whether anything was removed.
func Prune(b *domain.Block) bool {
	if b == nil || b.ResponsiveStyles == nil {
		return false
	}
	rs := b.ResponsiveStyles.Clone()
	removed := false
	prune := func(m domain.StyleMap) {
		for k, v := range m {
			if base, ok := b.Styles[k]; ok && reflect.DeepEqual(base, v) {
				delete(m, k)
				removed = true
			}
		}
	}
	prune(rs.Desktop)
	prune(rs.Tablet)
	prune(rs.Mobile)
	for _, m := range rs.Custom {
		prune(m)
	}

	cleaned := Clean(rs)
	changed := removed || !reflect.DeepEqual(cleaned, b.ResponsiveStyles)
	b.ResponsiveStyles = cleaned
	return changed
}
