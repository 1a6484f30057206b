// Package scope implements the translator's name resolution (spec.md
// §4.1): two tables, globals and locals, each pre-seeded with a fixed set
// of builtin names, plus the top-level-forces-global rule that governs
// both resolve and register.
package scope

import "github.com/dr8co/pybc2ssa/ident"

// preseededGlobals lists the names spec.md §4.1 requires in the globals
// table at Builtin kind.
var preseededGlobals = []string{
	"print", "range", "open", "len", "type", "str", "int", "float",
	"bool", "object", "super", "hasattr", "__name__", "__file__",
}

// preseededLocals lists the names spec.md §4.1 requires in the locals
// table at Builtin kind.
var preseededLocals = []string{"__name__", "staticmethod"}

// Table is a module-scoped identifier resolver: a globals map and a
// locals map, plus the flag saying whether the current translation
// position is the module top level.
type Table struct {
	globals  map[string]ident.Identifier
	locals   map[string]ident.Identifier
	module   ident.Identifier
	toplevel bool
}

// New builds a Table seeded per spec.md §4.1, for translation of module
// (toplevel=true) under the given module identifier.
func New(module ident.Identifier) *Table {
	t := &Table{
		globals:  make(map[string]ident.Identifier),
		locals:   make(map[string]ident.Identifier),
		module:   module,
		toplevel: true,
	}
	for _, name := range preseededGlobals {
		t.globals[name] = ident.New(name, ident.BUILTIN_KIND)
	}
	for _, name := range preseededLocals {
		t.locals[name] = ident.New(name, ident.BUILTIN_KIND)
	}
	return t
}

// NewNested builds a Table for a nested code object's translation state.
// Per spec.md §3 "Translation state ... nested code objects create a
// fresh state that inherits only the (immutable) name maps": globals is
// the single module-wide table, shared with the parent since STORE_GLOBAL
// anywhere must be visible everywhere; locals gets its own fresh map, so a
// nested object's local registrations (e.g. STORE_NAME of an import, or
// SETUP_ANNOTATIONS, at non-top-level) never leak into the parent's or a
// sibling's locals. toplevel is false: writes inside a nested object are
// local unless STORE_GLOBAL.
func NewNested(parent *Table, module ident.Identifier) *Table {
	return &Table{
		globals:  parent.globals,
		locals:   make(map[string]ident.Identifier),
		module:   module,
		toplevel: false,
	}
}

// Module returns the identifier for the object's own module/qualname
// root, used to build new Var/ImportName identifiers rooted at it.
func (t *Table) Module() ident.Identifier { return t.module }

// Resolve looks up name per spec.md §4.1's resolve(name, global?): at
// module top level, globals always win; otherwise global forces the
// globals table, and failing that locals falls back to globals.
// Unknown names resolve to $unknown.<name> at Normal kind.
func (t *Table) Resolve(name string, global bool) ident.Identifier {
	if t.toplevel || global {
		if id, ok := t.globals[name]; ok {
			return id
		}
		return t.unknown(name)
	}
	if id, ok := t.locals[name]; ok {
		return id
	}
	if id, ok := t.globals[name]; ok {
		return id
	}
	return t.unknown(name)
}

func (t *Table) unknown(name string) ident.Identifier {
	return ident.New("$unknown", ident.NORMAL_KIND).Extend(name)
}

// Register writes id into the correct table under name, applying the
// same top-level-forces-global rule as Resolve (spec.md §4.1 register).
func (t *Table) Register(name string, id ident.Identifier, global bool) {
	if t.toplevel || global {
		t.globals[name] = id
		return
	}
	t.locals[name] = id
}

// IsTopLevel reports whether this Table belongs to the module's
// top-level translation state.
func (t *Table) IsTopLevel() bool { return t.toplevel }
