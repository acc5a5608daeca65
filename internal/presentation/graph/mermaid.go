package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Overlay marks editor state on the diagram.
type Overlay struct {
	Selected []domain.BlockID
	Primary  *domain.BlockID
}

// GenerateMermaid renders the block tree of one page as a Mermaid flowchart.
// Blocks must be in tree pre-order, as returned by the editor.
// Shapes follow the block role:
//   - Page root: ((Circle))
//   - Layout blocks (section, container, row, column, grid): [[Subroutine]]
//   - Media (image, gallery, video): [(Cylinder)]
//   - Default: [Rectangle]
//
// Hidden blocks hang off a dotted edge and locked ones carry a lock marker.
func GenerateMermaid(pageName string, blocks []domain.Block, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    page((\"%s\"))\n", escape(pageName))

	for _, b := range blocks {
		id := nodeID(b.ID)
		opener, closer := shape(b.Type)

		label := string(b.Type)
		if b.Name != "" {
			label = b.Name + " <br/> " + label
		}
		if b.Locked {
			label += " 🔒"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)

		from := "page"
		if b.ParentID != nil {
			from = nodeID(*b.ParentID)
		}
		arrow := "-->"
		if !b.Visible {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, id)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on light fills in either theme.
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef primary fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.BlockID]bool)
		for _, sid := range overlay.Selected {
			if seen[sid] || (overlay.Primary != nil && *overlay.Primary == sid) {
				continue
			}
			seen[sid] = true
			fmt.Fprintf(&sb, "    class %s selected;\n", nodeID(sid))
		}
		if overlay.Primary != nil {
			fmt.Fprintf(&sb, "    class %s primary;\n", nodeID(*overlay.Primary))
		}
	}

	return sb.String()
}

func shape(t domain.BlockType) (string, string) {
	switch t {
	case domain.BlockSection, domain.BlockContainer, domain.BlockRow, domain.BlockColumn, domain.BlockGridContainer:
		return "[[", "]]"
	case domain.BlockImage, domain.BlockGallery, domain.BlockVideo:
		return "[(", ")]"
	default:
		return "[", "]"
	}
}

func nodeID(id domain.BlockID) string {
	return fmt.Sprintf("b%d", id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
