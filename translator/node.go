package translator

import "github.com/dr8co/pybc2ssa/ir"

// StmtAt pairs a Statement with the location of the instruction that
// emitted it, preserving the §5 ordering guarantee end to end.
type StmtAt struct {
	Loc  Loc
	Stmt ir.Statement
}

// Node is one basic block: straight-line statements plus the single
// terminator that closes it (spec.md §3 Node).
type Node struct {
	Label     string
	LabelLoc  Loc
	LastLoc   Loc
	Stmts     []StmtAt
	Last      ir.Terminator
}
