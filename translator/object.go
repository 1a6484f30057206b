package translator

import "github.com/dr8co/pybc2ssa/ident"

// ObjectAt pairs a nested Object with the location of the nested code
// object's first instruction (the zero Loc when it has no instructions).
type ObjectAt struct {
	Loc    Loc
	Object *Object
}

// Object is the translator's top-level output unit: one per code
// object, holding its own blocks plus recursively translated nested
// code objects (spec.md §3 Object).
type Object struct {
	Name      ident.Identifier
	Toplevel  []Node
	Objects   []ObjectAt
	Classes   []string
	Functions map[string]ident.Identifier
}
