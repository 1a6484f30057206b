// Package pycode describes the code-object shape handed to the
// translator by the bytecode frontend (out of scope for this module —
// see spec.md §1). It models the in-memory record the frontend is
// expected to produce, so the rest of the pipeline has a stable boundary
// type to depend on. It does not read compiled bytecode files; its only
// decoder is DecodeJSON (decode.go), which reads the JSON fixture format.
package pycode

import "github.com/dr8co/pybc2ssa/pyconst"

// Instruction is a single decoded bytecode instruction, as produced by
// the frontend. Offset is the stable identifier used as a label key
// (spec.md GLOSSARY "Offset"); IsJumpTarget is the frontend's own flag
// that an earlier pass pointed a jump at this offset, used to discover
// back-edges (spec.md §4.3).
type Instruction struct {
	OpName       string
	Arg          int
	Offset       int
	StartsLine   *int
	IsJumpTarget bool
}

// CodeObject is the immutable metadata record for one function or module
// body: its constant pool, name tables, local/cell/free variable arrays,
// and its instruction stream (spec.md §6 Input).
type CodeObject struct {
	Consts     []pyconst.Constant
	Names      []string
	VarNames   []string
	CellVars   []string
	FreeVars   []string
	Name       string
	Filename   string
	Instrs     []Instruction
}

// NextOffset returns the offset of the instruction immediately following
// the one at index i, and whether one exists. Several opcode handlers
// (JUMP_FORWARD, FOR_ITER) need "the following offset" to compute an
// absolute jump target; spec.md §7 NextOffsetMissing is the error raised
// when it does not exist.
func (co *CodeObject) NextOffset(i int) (int, bool) {
	if i+1 >= len(co.Instrs) {
		return 0, false
	}
	return co.Instrs[i+1].Offset, true
}
