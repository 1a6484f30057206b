// Package translator implements the abstract interpreter that lowers one
// pycode.CodeObject into a translator.Object: the translation state
// (spec.md §3 "Translation state"), the per-opcode contracts (spec.md
// §4.4), and the block/object assembler (spec.md §4.5).
package translator

import (
	"log/slog"

	"github.com/dr8co/pybc2ssa/cfg"
	"github.com/dr8co/pybc2ssa/ident"
	"github.com/dr8co/pybc2ssa/ir"
	"github.com/dr8co/pybc2ssa/pycode"
	"github.com/dr8co/pybc2ssa/scope"
	"github.com/dr8co/pybc2ssa/ssa"
	"github.com/dr8co/pybc2ssa/stack"
)

// State owns everything one translation pass over a single code object
// needs: the name tables, the CFG registry, the symbolic stack, the SSA
// counter, the pending statement list for the block under construction,
// and the classes/functions bookkeeping (spec.md §3 "Translation state").
//
// A nested code object gets a fresh State that shares only the
// module-wide globals table with its parent; its locals table starts
// fresh (see scope.NewNested).
type State struct {
	code    *pycode.CodeObject
	names   *scope.Table
	reg     *cfg.Registry[*State]
	stk     stack.Stack
	counter ssa.Counter

	stmts   []StmtAt
	curLoc  Loc
	classes map[string]struct{}
	funcs   map[string]ident.Identifier

	debug  bool
	logger *slog.Logger
}

// New builds the State for translating a top-level module code object.
// The module identifier is derived from co.Filename by the caller (see
// Translate and moduleNameFromFilename); State itself only stores whatever
// Identifier it is given.
func New(co *pycode.CodeObject, module ident.Identifier, debug bool, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		code:    co,
		names:   scope.New(module),
		reg:     cfg.New[*State](),
		classes: make(map[string]struct{}),
		funcs:   make(map[string]ident.Identifier),
		debug:   debug,
		logger:  logger,
	}
}

// NewNested builds the State for translating a code object nested inside
// parent, under the given (already-extended) module identifier.
func NewNested(parent *State, co *pycode.CodeObject, module ident.Identifier) *State {
	return &State{
		code:    co,
		names:   scope.NewNested(parent.names, module),
		reg:     cfg.New[*State](),
		classes: make(map[string]struct{}),
		funcs:   make(map[string]ident.Identifier),
		debug:   parent.debug,
		logger:  parent.logger,
	}
}

// emit appends stmt to the pending statement list at the translator's
// current cursor location, preserving emission order (spec.md §5).
func (s *State) emit(stmt ir.Statement) {
	s.stmts = append(s.stmts, StmtAt{Loc: s.curLoc, Stmt: stmt})
	if s.debug {
		s.logger.Debug("emit statement", "loc", s.curLoc.String(), "stmt", stmt.String(), "stack", s.stk.Snapshot())
	}
}

// drainStmts returns the pending statements for the block under
// construction and resets the pending list for the next block.
func (s *State) drainStmts() []StmtAt {
	out := s.stmts
	s.stmts = nil
	return out
}

// fresh allocates a new SSA temporary from this state's counter.
func (s *State) fresh() ssa.Name { return s.counter.Fresh() }

// pop wraps Stack.Pop, translating its sentinel error into a located,
// internal translator Error (spec.md §7 EmptyStack).
func (s *State) pop(op string) (ir.Expression, error) {
	v, err := s.stk.Pop()
	if err != nil {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, EmptyStack{Op: op})
	}
	return v, nil
}

// popN wraps Stack.PopN the same way pop wraps Stack.Pop.
func (s *State) popN(op string, k int) ([]ir.Expression, error) {
	vs, err := s.stk.PopN(k)
	if err != nil {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, EmptyStack{Op: op})
	}
	return vs, nil
}

// peek wraps Stack.Peek the same way pop wraps Stack.Pop.
func (s *State) peek(op string) (ir.Expression, error) {
	v, err := s.stk.Peek()
	if err != nil {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, EmptyStack{Op: op})
	}
	return v, nil
}

// getOrCreateLabel returns the label already registered at offset, or
// mints one with a fresh arity-sized SSA parameter list when none
// exists yet. Unlike cfg.Registry.GetLabel, it never allocates SSA names
// it then discards: arity is only consumed on the minting path.
func (s *State) getOrCreateLabel(offset int, arity int) *cfg.Label[*State] {
	if lbl, ok := s.reg.LabelAt(offset); ok {
		return lbl
	}
	return s.reg.GetLabel(offset, stack.MkSSAParameters(&s.counter, arity), nil)
}

// tempsFor converts a label's SSA parameter list into the Temp
// expressions used to repopulate the symbolic stack on block entry.
func tempsFor(names []ssa.Name) []ir.Expression {
	out := make([]ir.Expression, len(names))
	for i, n := range names {
		out[i] = ir.Temp{Name: n}
	}
	return out
}
