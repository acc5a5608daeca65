package versions

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// FirstTag is returned by NextTag when no existing version parses.
const FirstTag = "v1.0.0"

var tagRe = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// Tag is a parsed version string.
type Tag struct {
	Major, Minor, Patch int
}

func (t Tag) String() string {
	return fmt.Sprintf("v%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Less orders tags numerically by (major, minor, patch).
func (t Tag) Less(o Tag) bool {
	if t.Major != o.Major {
		return t.Major < o.Major
	}
	if t.Minor != o.Minor {
		return t.Minor < o.Minor
	}
	return t.Patch < o.Patch
}

// ParseTag parses "v1.2.3" or "1.2.3".
func ParseTag(s string) (Tag, bool) {
	m := tagRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Tag{}, false
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Tag{}, false
		}
		parts[i] = n
	}
	return Tag{Major: parts[0], Minor: parts[1], Patch: parts[2]}, true
}

// Compare returns -1, 0 or 1. Unparsable strings compare as v0.0.0.
func Compare(a, b string) int {
	ta, _ := ParseTag(a)
	tb, _ := ParseTag(b)
	switch {
	case ta.Less(tb):
		return -1
	case tb.Less(ta):
		return 1
	}
	return 0
}

// NextTag bumps the patch of the highest parsable version, or returns
// FirstTag when none parses.
func NextTag(versions []domain.Version) string {
	var latest Tag
	found := false
	for _, v := range versions {
		t, ok := ParseTag(v.Version)
		if !ok {
			continue
		}
		if !found || latest.Less(t) {
			latest, found = t, true
		}
	}
	if !found {
		return FirstTag
	}
	latest.Patch++
	return latest.String()
}

// SortByDate returns a copy ordered newest first.
func SortByDate(versions []domain.Version) []domain.Version {
	out := append([]domain.Version(nil), versions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// SortByNumber returns a copy ordered highest version first.
func SortByNumber(versions []domain.Version) []domain.Version {
	out := append([]domain.Version(nil), versions...)
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i].Version, out[j].Version) > 0 })
	return out
}

// Current returns the most recently created published version, or the first
// version when none is published.
func Current(versions []domain.Version) (domain.Version, bool) {
	var published []domain.Version
	for _, v := range versions {
		if v.IsPublished {
			published = append(published, v)
		}
	}
	if len(published) > 0 {
		return SortByDate(published)[0], true
	}
	if len(versions) > 0 {
		return versions[0], true
	}
	return domain.Version{}, false
}

// Find returns the first version whose version string or tag equals s.
func Find(versions []domain.Version, s string) (domain.Version, bool) {
	for _, v := range versions {
		if v.Version == s || (v.Tag != "" && v.Tag == s) {
			return v, true
		}
	}
	return domain.Version{}, false
}

var (
	errVersionRequired = errors.New("version is required")
	errVersionFormat   = errors.New("invalid version format (expected v1.0.0)")
	errDataRequired    = errors.New("version data is required")
)

// Validate reports every problem with v.
func Validate(v domain.Version) error {
	var errs error
	switch {
	case strings.TrimSpace(v.Version) == "":
		errs = multierr.Append(errs, errVersionRequired)
	case !tagRe.MatchString(v.Version):
		errs = multierr.Append(errs, errVersionFormat)
	}
	if v.Data == nil {
		errs = multierr.Append(errs, errDataRequired)
	}
	return errs
}

// Clone derives an unpublished copy of v with the next tag.
func Clone(v domain.Version, id string, now time.Time) domain.Version {
	out := v.Clone()
	out.ID = id
	out.Version = NextTag([]domain.Version{v})
	out.CreatedAt = now
	out.IsPublished = false
	return out
}

// Diff lists the page and block keys that differ between two versions.
func Diff(older, newer domain.Version) domain.ProjectDiff {
	return domain.DiffProjects(older.Data, newer.Data)
}
