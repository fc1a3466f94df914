package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/tree"
)

// Overlay contains navigation state to highlight on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayOf marks the leaves before the cursor of root as visited and the
// current leaf as current.
func OverlayOf(root *tree.Node) *Overlay {
	current := root.CurrentPathString()
	o := &Overlay{CurrentNode: current}
	for _, leaf := range root.LeafNodes() {
		if leaf == current {
			break
		}
		o.VisitedNodes = append(o.VisitedNodes, leaf)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the tree below root.
// It applies semantic styling:
//   - Sentinels: ((Circle))
//   - Shuffled blocks: {{Hexagon}}
//   - Other blocks: [Rectangle]
//   - Leaves: ([Stadium])
//
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(root *tree.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", rootID, escapeLabel(root.ID()))

	root.Walk(func(n *tree.Node) bool {
		if n == root {
			return true
		}
		path := n.PathString()
		opener, closer := "([", "])"
		switch {
		case n.Depth() == root.Depth()+1 && domain.IsSentinel(n.ID()):
			opener, closer = "((", "))"
		case !n.IsLeaf() && n.Shuffled():
			opener, closer = "{{", "}}"
		case !n.IsLeaf():
			opener, closer = "[", "]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(path), opener, escapeLabel(n.ID()), closer)

		parent := rootID
		if n.Parent() != root {
			parent = sanitizeMermaidID(n.Parent().PathString())
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", parent, sanitizeMermaidID(path))
		return true
	})

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, p := range overlay.VisitedNodes {
			id := sanitizeMermaidID(p)
			if p != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

const rootID = "root"

// sanitizeMermaidID prefixes ids so that reserved words such as "end" are never
// used bare, and replaces characters Mermaid rejects.
func sanitizeMermaidID(path string) string {
	r := strings.NewReplacer(
		domain.PathSeparator, "__",
		".", "_",
		"-", "_",
		" ", "_",
		"\\", "_",
	)
	return "n_" + r.Replace(path)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
