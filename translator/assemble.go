package translator

import (
	"path"
	"strings"

	"github.com/dr8co/pybc2ssa/ident"
	"github.com/dr8co/pybc2ssa/ir"
	"github.com/dr8co/pybc2ssa/pycode"
	"github.com/dr8co/pybc2ssa/stack"
)

// parseBlock runs the interpreter starting at startIdx until it either
// hits an instruction that already starts a known label (spec.md §4.3),
// or produces a terminator itself (spec.md §4.5
// parse_bytecode_until_terminator). It returns the assembled Node and
// the index of the first instruction of the next block.
func (s *State) parseBlock(startIdx int, labelName string, labelLoc Loc) (Node, int, error) {
	node := Node{Label: labelName, LabelLoc: labelLoc}
	idx := startIdx

	for {
		term, err := s.step(idx)
		if err != nil {
			return Node{}, 0, err
		}
		lastLoc := s.curLoc
		if term != nil {
			node.Last = term
			node.LastLoc = lastLoc
			idx++
			break
		}

		idx++
		if idx >= len(s.code.Instrs) {
			break
		}

		next := s.code.Instrs[idx]
		lbl, exists := s.reg.StartsWithJumpTarget(next.Offset, next.IsJumpTarget, s.stk.Len(), &s.counter)
		if exists {
			ssaArgs := s.stk.ToSSA()
			node.Last = ir.Jump{Targets: []ir.NodeCall{{Label: lbl.Name, SSAArgs: ssaArgs}}}
			node.LastLoc = lastLoc
			break
		}
	}

	node.Stmts = s.drainStmts()
	return node, idx, nil
}

// mkNodes drains instructions block by block (spec.md §4.5 mk_nodes).
// At each block boundary it reuses a known/forced label target, marking
// it processed, or mints a fresh one for the fall-through block.
func (s *State) mkNodes(startIdx int, entryLabel string, entryLoc Loc) ([]Node, error) {
	var nodes []Node
	idx := startIdx
	labelName := entryLabel
	labelLoc := entryLoc

	for idx < len(s.code.Instrs) {
		node, nextIdx, err := s.parseBlock(idx, labelName, labelLoc)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		idx = nextIdx
		if idx >= len(s.code.Instrs) {
			break
		}

		nextOffset := s.code.Instrs[idx].Offset
		nextInstr := s.code.Instrs[idx]
		lbl, exists := s.reg.StartsWithJumpTarget(nextOffset, nextInstr.IsJumpTarget, s.stk.Len(), &s.counter)
		if !exists {
			lbl = s.reg.GetLabel(nextOffset, stack.MkSSAParameters(&s.counter, s.stk.Len()), nil)
		}
		if lbl.Processed {
			break
		}
		s.reg.ProcessLabel(nextOffset)
		s.stk.Replace(tempsFor(lbl.SSAParameters))
		if lbl.Prelude != nil {
			lbl.Prelude(s)
		}
		labelName = lbl.Name
		labelLoc = Loc{Offset: nextOffset}
	}
	return nodes, nil
}

// translateObject runs mk_object for the code object held by s: it seeds
// the entry block (offset 0, already processed), drives mkNodes, then
// recurses into every embedded code constant (spec.md §4.5 mk_object).
func (s *State) translateObject() (*Object, error) {
	obj := &Object{Name: s.names.Module(), Functions: s.funcs}

	if len(s.code.Instrs) > 0 {
		entryOffset := s.code.Instrs[0].Offset
		entryLbl := s.reg.GetLabel(entryOffset, nil, nil)
		entryLbl.Processed = true

		nodes, err := s.mkNodes(0, entryLbl.Name, Loc{Offset: entryOffset, Line: s.code.Instrs[0].StartsLine})
		if err != nil {
			return nil, err
		}
		obj.Toplevel = nodes
	}

	objs, err := s.nestedObjects()
	if err != nil {
		return nil, err
	}
	obj.Objects = objs
	obj.Classes = sortedKeys(s.classes)
	return obj, nil
}

// nestedObjects recursively translates every embedded code constant in
// s's constant pool with a fresh, nested State (spec.md §4.5 mk_object,
// §5 "each nested code object is translated with an independent state").
func (s *State) nestedObjects() ([]ObjectAt, error) {
	var out []ObjectAt
	for _, c := range s.code.Consts {
		handle, ok := c.CodeHandle()
		if !ok {
			continue
		}
		inner, ok := handle.Handle.(*pycode.CodeObject)
		if !ok {
			continue
		}

		nestedModule := s.names.Module().Extend(inner.Name)
		nested := NewNested(s, inner, nestedModule)
		obj, err := nested.translateObject()
		if err != nil {
			return nil, err
		}

		loc := Loc{}
		if len(inner.Instrs) > 0 {
			loc = Loc{Offset: inner.Instrs[0].Offset, Line: inner.Instrs[0].StartsLine}
		}
		out = append(out, ObjectAt{Loc: loc, Object: obj})
	}
	return out, nil
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Small, deterministic, and avoids pulling in "sort" for a handful of
	// class names; insertion-stable ordering is not a requirement here,
	// only determinism across runs over the same input.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// moduleNameFromFilename derives the top-level module identifier from a
// code object's filename by stripping a leading "./" and the file
// extension and splitting on "/" (spec.md §4.5 mk_object).
func moduleNameFromFilename(filename string) ident.Identifier {
	f := strings.TrimPrefix(filename, "./")
	if ext := path.Ext(f); ext != "" {
		f = strings.TrimSuffix(f, ext)
	}
	var parts []string
	for _, p := range strings.Split(f, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = []string{f}
	}
	mod := ident.New(parts[0], ident.NORMAL_KIND)
	for _, p := range parts[1:] {
		mod = mod.Extend(p)
	}
	return mod
}
