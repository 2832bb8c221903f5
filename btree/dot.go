package btree

import (
	"fmt"
	"io"
	"strings"
)

// ToDot writes the internal structure of the tree in Graphviz DOT format
// (for debugging purposes). Leaves list up to maxEntries entries each,
// formatted with %v.
func (t *Tree[E, V]) ToDot(w io.Writer, maxEntries int) error {
	var nodelist, edgelist strings.Builder
	var walk func(id, height int) string
	walk = func(id, height int) string {
		if height == 1 {
			name := fmt.Sprintf("L%d", id)
			leaf := t.leaves[id]
			label := fmt.Sprintf("leaf %d\\n%d entries, len %d", id, len(leaf.entries),
				t.cfg.Metrics.Raw(t.leafAgg(id)))
			for i, e := range leaf.entries {
				if i == maxEntries {
					label += "\\n…"
					break
				}
				label += "\\n" + dotEscape(fmt.Sprintf("%v", e))
			}
			fmt.Fprintf(&nodelist, "\"%s\" [label=\"%s\" %s];\n", name, label, nodeDotStyles(true))
			return name
		}
		name := fmt.Sprintf("N%d", id)
		inner := t.inners[id]
		for _, c := range inner.children {
			child := walk(c, height-1)
			fmt.Fprintf(&edgelist, "\"%s\" -> \"%s\";\n", name, child)
		}
		fmt.Fprintf(&nodelist, "\"%s\" [label=%d %s];\n", name,
			t.cfg.Metrics.Raw(t.innerAgg(id)), nodeDotStyles(false))
		return name
	}
	walk(t.root, t.height)
	var b strings.Builder
	b.WriteString("strict digraph {\n")
	b.WriteString("\tnode [fontname=Arial,fontsize=12];\n")
	b.WriteString(nodelist.String())
	b.WriteString(edgelist.String())
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodeDotStyles(isleaf bool) string {
	s := ",style=filled"
	if isleaf {
		s += ",shape=box"
	} else {
		s += ",color=black,fillcolor=\"#a3d7e4\""
		s += ",shape=circle"
	}
	return s
}

func dotEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}
