package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gosuri/uitable"
	"github.com/maruel/natural"
	"github.com/manifoldco/promptui"

	"github.com/aretw0/pagecraft/pkg/domain"
)

const timeLayout = "2006-01-02 15:04"

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	return tbl
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// PrintProjects writes a project listing.
func PrintProjects(w io.Writer, list []domain.ProjectSummary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No projects.")
		return
	}
	tbl := newTable()
	tbl.AddRow("ID", "NAME", "PAGES", "UPDATED")
	for _, p := range list {
		tbl.AddRow(p.ID, p.Name, p.Pages, stamp(p.UpdatedAt))
	}
	fmt.Fprintln(w, tbl)
}

// PrintVersions writes a version listing in the given order.
func PrintVersions(w io.Writer, list []domain.Version) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No versions.")
		return
	}
	tbl := newTable()
	tbl.AddRow("ID", "VERSION", "TAG", "PUBLISHED", "CREATED", "DESCRIPTION")
	for _, v := range list {
		published := ""
		if v.IsPublished {
			published = "yes"
		}
		tbl.AddRow(v.ID, v.Version, v.Tag, published, stamp(v.CreatedAt), v.Description)
	}
	fmt.Fprintln(w, tbl)
}

// PrintCatalog writes the palette grouped by category, both in natural order.
func PrintCatalog(w io.Writer, items []domain.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Catalog is empty.")
		return
	}
	sorted := append([]domain.CatalogItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return natural.Less(sorted[i].Category, sorted[j].Category)
		}
		return natural.Less(sorted[i].ID, sorted[j].ID)
	})

	tbl := newTable()
	tbl.AddRow("CATEGORY", "ID", "NAME", "TYPE")
	for _, it := range sorted {
		tbl.AddRow(it.Category, it.ID, it.Name, it.Type)
	}
	fmt.Fprintln(w, tbl)
}

// Confirm asks a yes/no question on the terminal. Assume skips the prompt.
func Confirm(label string, assume bool) (bool, error) {
	if assume {
		return true, nil
	}
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
