package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// FileResult is the outcome of validating one exported project.
type FileResult struct {
	Path     string
	Name     string
	Pages    int
	Blocks   int
	Problems []error
}

// OK reports whether the file imported cleanly.
func (r FileResult) OK() bool { return len(r.Problems) == 0 }

// ValidateFiles checks every file matched by patterns (doublestar globs such
// as "exports/**/*.json") against the import rules. Results are in natural
// path order. A pattern that matches nothing is an error.
func ValidateFiles(patterns []string) ([]FileResult, error) {
	seen := map[string]bool{}
	var paths []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Sort(natural.StringSlice(paths))

	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, validateFile(path))
	}
	return results, nil
}

func validateFile(path string) FileResult {
	res := FileResult{Path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		res.Problems = []error{err}
		return res
	}
	data, err := schema.Import(raw)
	if err != nil {
		res.Problems = schema.ValidationErrors(err)
		if len(res.Problems) == 0 {
			res.Problems = []error{err}
		}
		return res
	}
	res.Name = data.Name
	res.Pages = len(data.Pages)
	res.Blocks = data.BlockCount()
	return res
}

// PrintValidation writes one line per file plus its problems and returns the
// number of invalid files.
func PrintValidation(w io.Writer, results []FileResult) int {
	failed := 0
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(w, "✅ %s (%s: %d pages, %d blocks)\n", r.Path, r.Name, r.Pages, r.Blocks)
			continue
		}
		failed++
		fmt.Fprintf(w, "❌ %s\n", r.Path)
		for _, p := range r.Problems {
			fmt.Fprintf(w, "   - %v\n", p)
		}
	}
	return failed
}
