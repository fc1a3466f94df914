package tree

import (
	"strings"

	"github.com/xlab/treeprint"
)

// TreeDiagram renders the subtree with box-drawing connectors:
//
//	/
//	├── A
//	│   └── 1
//	└── B
//
// The root starts with its bare id. Any other node is drawn as the last
// branch of its own diagram, so its first line reads "└── id".
func (n *Node) TreeDiagram() string {
	t := treeprint.NewWithRoot(n.id)
	addBranches(t, n)
	out := t.String()
	if n.IsRoot() {
		return out
	}
	lines := strings.SplitAfter(strings.TrimSuffix(out, "\n"), "\n")
	var b strings.Builder
	b.WriteString("└── " + lines[0])
	for _, line := range lines[1:] {
		b.WriteString("    " + line)
	}
	b.WriteString("\n")
	return b.String()
}

func addBranches(t treeprint.Tree, n *Node) {
	for _, ch := range n.children {
		if len(ch.children) == 0 {
			t.AddNode(ch.id)
			continue
		}
		addBranches(t.AddBranch(ch.id), ch)
	}
}
