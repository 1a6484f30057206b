package ir

import (
	"fmt"
	"strings"
)

// Terminator is the interface implemented by every form in the
// terminator sum (spec.md §3 Terminator). Every Node ends with exactly
// one Terminator.
type Terminator interface {
	// Marker method to identify terminator nodes.
	terminatorNode()
	// String returns a debug representation of the terminator.
	String() string
}

// Return ends a block by returning exp from the enclosing object.
type Return struct{ Exp Expression }

func (Return) terminatorNode() {}
func (r Return) String() string { return "return " + r.Exp.String() }

// NodeCall names a successor label together with the SSA arguments
// supplied for its ssa_parameters (spec.md §3 Terminator, NodeCall).
type NodeCall struct {
	Label   string
	SSAArgs []Expression
}

func (n NodeCall) String() string {
	parts := make([]string, len(n.SSAArgs))
	for i, a := range n.SSAArgs {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Label, strings.Join(parts, ", "))
}

// Jump is an unconditional control transfer to one or more successor
// labels. Every Jump this translator builds carries exactly one
// NodeCall; two-way branches are an If whose Then and Else are each a
// single-target Jump.
type Jump struct{ Targets []NodeCall }

func (Jump) terminatorNode() {}
func (j Jump) String() string {
	parts := make([]string, len(j.Targets))
	for i, t := range j.Targets {
		parts[i] = t.String()
	}
	return "jump " + strings.Join(parts, ", ")
}

// If is a two-way conditional terminator: Cond selects between Then and
// Else, each itself a Terminator (in practice always a Jump in this
// translator, to the "next" and "other" labels of a branch opcode).
type If struct {
	Cond Expression
	Then Terminator
	Else Terminator
}

func (If) terminatorNode() {}
func (i If) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond, i.Then, i.Else)
}
