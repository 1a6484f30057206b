package translator

import (
	"fmt"
	"strings"
)

// Dump renders obj and its nested Objects as an indented text tree, for
// the CLI's default (non-trace) output mode.
func (obj *Object) Dump() string {
	var b strings.Builder
	obj.dump(&b, 0)
	return b.String()
}

func (obj *Object) dump(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%sobject %s\n", indent, obj.Name.String())
	if len(obj.Classes) > 0 {
		fmt.Fprintf(b, "%s  classes: %s\n", indent, strings.Join(obj.Classes, ", "))
	}
	for _, node := range obj.Toplevel {
		fmt.Fprintf(b, "%s  %s %s:\n", indent, node.Label, node.LabelLoc.String())
		for _, st := range node.Stmts {
			fmt.Fprintf(b, "%s    %s    ; %s\n", indent, st.Stmt.String(), st.Loc.String())
		}
		if node.Last != nil {
			fmt.Fprintf(b, "%s    %s    ; %s\n", indent, node.Last.String(), node.LastLoc.String())
		}
	}
	for _, nested := range obj.Objects {
		nested.Object.dump(b, depth+1)
	}
}
