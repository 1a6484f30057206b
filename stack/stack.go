// Package stack implements the translator's symbolic evaluation stack
// (spec.md §4.2): a compile-time list of expressions, stored
// bottom-first with the top of stack as the last element. It is never a
// runtime artifact — opcode handlers push and pop on the translation
// state's Stack in place.
package stack

import (
	"errors"

	"github.com/dr8co/pybc2ssa/ir"
	"github.com/dr8co/pybc2ssa/ssa"
)

// ErrEmptyStack is returned by Pop and Peek when the stack holds no
// values (spec.md §7 EmptyStack).
var ErrEmptyStack = errors.New("stack: empty")

// Stack is an ordered list of symbolic values; the last element is the
// top of stack. The zero value is an empty stack.
type Stack struct {
	values []ir.Expression
}

// Push appends exp to the top of the stack.
func (s *Stack) Push(exp ir.Expression) {
	s.values = append(s.values, exp)
}

// Pop removes and returns the top value of the stack.
func (s *Stack) Pop() (ir.Expression, error) {
	if len(s.values) == 0 {
		return nil, ErrEmptyStack
	}
	top := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return top, nil
}

// Peek returns the top value of the stack without removing it.
func (s *Stack) Peek() (ir.Expression, error) {
	if len(s.values) == 0 {
		return nil, ErrEmptyStack
	}
	return s.values[len(s.values)-1], nil
}

// PopN pops k values and returns them deepest-first (i.e. in the order
// they were originally pushed), matching spec.md §4.2's pop_n contract.
func (s *Stack) PopN(k int) ([]ir.Expression, error) {
	out := make([]ir.Expression, k)
	for i := k - 1; i >= 0; i-- {
		v, err := s.Pop()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Len reports the current stack arity.
func (s *Stack) Len() int { return len(s.values) }

// ToSSA drains the stack and returns its live expressions, deepest-first,
// for use as SSA arguments at a jump (spec.md §4.2 to_ssa).
func (s *Stack) ToSSA() []ir.Expression {
	out := make([]ir.Expression, len(s.values))
	copy(out, s.values)
	s.values = nil
	return out
}

// Snapshot returns the current stack contents, deepest-first, without
// draining the stack. Used for the translator's debug trace (when
// Config.Debug is set).
func (s *Stack) Snapshot() []ir.Expression {
	out := make([]ir.Expression, len(s.values))
	copy(out, s.values)
	return out
}

// MkSSAParameters allocates k fresh SSA names from counter to stand for
// the stack a successor block expects (spec.md §4.2 mk_ssa_parameters).
func MkSSAParameters(counter *ssa.Counter, k int) []ssa.Name {
	return counter.FreshN(k)
}

// Replace overwrites the stack contents with values, top-of-stack last
// (i.e. values[len(values)-1] becomes the new top). Used to restore a
// block-entry stack from a label's SSA parameters, before any prelude
// pushes onto it.
func (s *Stack) Replace(values []ir.Expression) {
	s.values = append(s.values[:0], values...)
}
