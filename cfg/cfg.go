// Package cfg implements the translator's label and control-flow-graph
// registry (spec.md §4.3). Label stores an optional "prelude" hook of
// type State -> State; since State itself owns a Registry, Label and
// Registry are parameterized over an abstract state type S and
// instantiated with the translator's concrete State (spec.md §9
// "Self-referential type avoidance").
package cfg

import (
	"fmt"

	"github.com/dr8co/pybc2ssa/ssa"
)

// Prelude adjusts a block-entry state before its statements are
// interpreted (spec.md GLOSSARY "Prelude"). Used by FOR_ITER's "next"
// label to repush the iterator and the current item.
type Prelude[S any] func(S) S

// Label is one entry of the CFG registry: its SSA-parameter arity, a
// processed flag (has this block's body been emitted yet), a back-edge
// flag, and an optional prelude (spec.md §3 Label).
type Label[S any] struct {
	Name          string
	SSAParameters []ssa.Name
	Processed     bool
	Backedge      bool
	Prelude       Prelude[S]
}

// Registry maps bytecode offsets to Labels and mints fresh label names
// (spec.md §3 CFG registry).
type Registry[S any] struct {
	labels        map[int]*Label[S]
	order         []int // offsets in first-registered order, for deterministic iteration
	freshCounter  int
}

// New builds an empty Registry.
func New[S any]() *Registry[S] {
	return &Registry[S]{labels: make(map[int]*Label[S])}
}

// freshName mints a new, unique label name.
func (r *Registry[S]) freshName() string {
	name := fmt.Sprintf("L%d", r.freshCounter)
	r.freshCounter++
	return name
}

// GetLabel is idempotent (spec.md §4.3 get_label): if a label is already
// registered at offset, it is returned unchanged, ignoring ssaParams and
// prelude in favor of the registered shape. Otherwise a fresh label is
// minted and registered with the given shape.
func (r *Registry[S]) GetLabel(offset int, ssaParams []ssa.Name, prelude Prelude[S]) *Label[S] {
	if lbl, ok := r.labels[offset]; ok {
		return lbl
	}
	lbl := &Label[S]{
		Name:          r.freshName(),
		SSAParameters: ssaParams,
		Prelude:       prelude,
	}
	r.labels[offset] = lbl
	r.order = append(r.order, offset)
	return lbl
}

// LabelAt returns the label registered at offset, if any.
func (r *Registry[S]) LabelAt(offset int) (*Label[S], bool) {
	lbl, ok := r.labels[offset]
	return lbl, ok
}

// ProcessLabel marks the label at offset as visited, preventing the
// block it starts from being re-entered (spec.md §4.3 process_label).
func (r *Registry[S]) ProcessLabel(offset int) {
	if lbl, ok := r.labels[offset]; ok {
		lbl.Processed = true
	}
}

// StartsWithJumpTarget decides, at the head of a basic block, whether
// the next instruction already has a label (spec.md §4.3
// starts_with_jump_target):
//
//  1. a label is already registered at offset: return it as-is.
//  2. the frontend flagged the instruction as a jump target but no label
//     exists yet: this is a back-edge target not yet visited. Synthesize
//     a label with arity = stackArity, fresh SSA parameters from
//     counter, and Backedge=true.
//
// The bool result reports whether a label exists at offset at all
// (either found or freshly synthesized). When no label is registered and
// isJumpTarget is false, StartsWithJumpTarget returns (nil, false).
func (r *Registry[S]) StartsWithJumpTarget(offset int, isJumpTarget bool, stackArity int, counter *ssa.Counter) (*Label[S], bool) {
	if lbl, ok := r.labels[offset]; ok {
		return lbl, true
	}
	if !isJumpTarget {
		return nil, false
	}
	lbl := &Label[S]{
		Name:          r.freshName(),
		SSAParameters: counter.FreshN(stackArity),
		Backedge:      true,
	}
	r.labels[offset] = lbl
	r.order = append(r.order, offset)
	return lbl, true
}

// Offsets returns the registered offsets in the order their labels were
// first created, for deterministic object-tree printing.
func (r *Registry[S]) Offsets() []int {
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}
