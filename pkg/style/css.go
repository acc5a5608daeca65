package style

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Media query widths for device overrides.
const (
	TabletMaxWidth = 1024
	MobileMaxWidth = 768
)

var (
	upperRe   = regexp.MustCompile(`([A-Z])`)
	hyphenRe  = regexp.MustCompile(`-([a-z])`)
	colorRe   = regexp.MustCompile(`^(#[0-9A-Fa-f]{3,8}|rgb\(|rgba\(|hsl\(|hsla\(|[a-z]+)$`)
	sizeRe    = regexp.MustCompile(`^-?\d+(\.\d+)?(px|em|rem|%|vh|vw|pt|pc|in|cm|mm|ex|ch|vmin|vmax)?$`)
	keywords  = map[string]bool{"none": true, "block": true, "flex": true, "grid": true, "inline": true, "inline-block": true, "relative": true, "absolute": true, "fixed": true, "sticky": true}
	universal = map[string]bool{"": true, "auto": true, "inherit": true, "initial": true}
)

// Kebab converts a camelCase style key to its CSS property name.
func Kebab(key string) string {
	return strings.ToLower(upperRe.ReplaceAllString(key, "-$1"))
}

// Camel converts a CSS property name to a camelCase style key.
func Camel(prop string) string {
	return hyphenRe.ReplaceAllStringFunc(prop, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

func isSynthetic(key string) bool {
	return strings.HasPrefix(key, "display_")
}

// ToCSS renders declarations in key order. Synthetic visibility keys are skipped.
func ToCSS(styles domain.StyleMap) string {
	keys := make([]string, 0, len(styles))
	for k := range styles {
		if isSynthetic(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	decls := make([]string, 0, len(keys))
	for _, k := range keys {
		decls = append(decls, fmt.Sprintf("%s: %s;", Kebab(k), formatValue(styles[k])))
	}
	return strings.Join(decls, " ")
}

// FromCSS parses "a: b; c-d: e" declarations into a style map.
func FromCSS(css string) domain.StyleMap {
	out := domain.StyleMap{}
	for _, decl := range strings.Split(css, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[Camel(key)] = value
	}
	return out
}

// Stylesheet renders the base rule for selector followed by the tablet and
// mobile media queries derived from b's overrides and visibility keys.
func Stylesheet(selector string, b *domain.Block) string {
	var sb strings.Builder

	base := b.Styles.Clone()
	if base == nil {
		base = domain.StyleMap{}
	}
	if IsHidden(b.Styles, domain.DeviceDesktop) {
		base["display"] = displayNone
	}
	if css := ToCSS(base); css != "" {
		fmt.Fprintf(&sb, "%s { %s }\n", selector, css)
	}
	sb.WriteString(MediaQueries(selector, b))
	return sb.String()
}

// MediaQueries renders tablet overrides under max-width 1024px and mobile
// overrides under max-width 768px.
func MediaQueries(selector string, b *domain.Block) string {
	var sb strings.Builder
	for _, q := range []struct {
		device domain.Device
		width  int
	}{
		{domain.DeviceTablet, TabletMaxWidth},
		{domain.DeviceMobile, MobileMaxWidth},
	} {
		decls := b.ResponsiveStyles.ForDevice(q.device).Clone()
		if IsHidden(b.Styles, q.device) || IsHidden(decls, q.device) {
			if decls == nil {
				decls = domain.StyleMap{}
			}
			decls["display"] = displayNone
		}
		css := ToCSS(decls)
		if css == "" {
			continue
		}
		fmt.Fprintf(&sb, "@media (max-width: %dpx) { %s { %s } }\n", q.width, selector, css)
	}
	return sb.String()
}

// ValidateValue reports whether v is an acceptable CSS value.
func ValidateValue(key string, v any) bool {
	switch val := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return !math.IsNaN(val)
	case float32:
		return !math.IsNaN(float64(val))
	case string:
		s := strings.TrimSpace(val)
		if universal[s] || keywords[s] {
			return true
		}
		return colorRe.MatchString(s) || sizeRe.MatchString(s)
	default:
		return false
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(v)
	}
}
