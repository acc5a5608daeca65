package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Outline describes a project as markdown: a page table followed by the
// block tree of every page.
func Outline(data *domain.ProjectData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", orDash(data.Name))

	sb.WriteString("| Page | Path | Blocks | Home |\n|---|---|---|---|\n")
	for _, p := range data.Pages {
		home := ""
		if p.IsHome {
			home = "yes"
		}
		fmt.Fprintf(&sb, "| %s | `%s` | %d | %s |\n", orDash(p.Name), p.Path, len(p.Blocks), home)
	}

	for _, p := range data.Pages {
		fmt.Fprintf(&sb, "\n## %s\n\n", orDash(p.Name))
		if p.Meta.Title != "" {
			fmt.Fprintf(&sb, "_%s_\n\n", p.Meta.Title)
		}
		if len(p.Blocks) == 0 {
			sb.WriteString("No blocks.\n")
			continue
		}
		writeTree(&sb, p.Blocks)
	}
	return sb.String()
}

func writeTree(sb *strings.Builder, blocks []domain.Block) {
	depth := make(map[domain.BlockID]int, len(blocks))
	for _, b := range blocks {
		d := 0
		if b.ParentID != nil {
			d = depth[*b.ParentID] + 1
		}
		depth[b.ID] = d

		fmt.Fprintf(sb, "%s- **%s** `#%d`", strings.Repeat("  ", d), b.Type, b.ID)
		if b.Name != "" {
			fmt.Fprintf(sb, " %s", b.Name)
		}
		var flags []string
		if !b.Visible {
			flags = append(flags, "hidden")
		}
		if b.Locked {
			flags = append(flags, "locked")
		}
		if len(flags) > 0 {
			fmt.Fprintf(sb, " (%s)", strings.Join(flags, ", "))
		}
		sb.WriteString("\n")
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
