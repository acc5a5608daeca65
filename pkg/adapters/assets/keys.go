package assets

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// NewKey derives a unique, filesystem-safe key from an upload name:
// "<uuid>-<slug><ext>", e.g. "3f0c...-hero-banner.png".
func NewKey(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "asset"
	}
	return uuid.NewString() + "-" + base + ext
}
