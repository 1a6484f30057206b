// Package ir defines the expression, statement, and terminator IR
// produced by the translator (spec.md §3). All expression forms are
// side-effect-free leaves; side effects are staged as Statements (see
// stmt.go) and control flow lives in Terminator (see term.go).
package ir

import (
	"fmt"
	"strings"

	"github.com/dr8co/pybc2ssa/ident"
	"github.com/dr8co/pybc2ssa/pyconst"
	"github.com/dr8co/pybc2ssa/ssa"
)

// Expression is the interface implemented by every form in the
// expression sum (spec.md §3 Expression table).
type Expression interface {
	// Marker method to identify expression nodes.
	expressionNode()
	// String returns a debug representation of the expression.
	String() string
}

// Const is a literal constant-pool value.
type Const struct{ Value pyconst.Constant }

func (Const) expressionNode()  {}
func (c Const) String() string { return c.Value.String() }

// Var is a resolved qualified name.
type Var struct{ ID ident.Identifier }

func (Var) expressionNode()  {}
func (v Var) String() string { return v.ID.String() }

// LocalVar is an unresolved local-slot name (from co_varnames), carried
// as-is rather than resolved against a name table.
type LocalVar struct{ Name string }

func (LocalVar) expressionNode()  {}
func (l LocalVar) String() string { return l.Name }

// Temp is an SSA temporary.
type Temp struct{ Name ssa.Name }

func (Temp) expressionNode()  {}
func (t Temp) String() string { return t.Name.String() }

// Subscript is exp[index].
type Subscript struct {
	Exp   Expression
	Index Expression
}

func (Subscript) expressionNode() {}
func (s Subscript) String() string {
	return fmt.Sprintf("%s[%s]", s.Exp, s.Index)
}

// CollectionKind discriminates the builder result kinds for Collection.
type CollectionKind string

//nolint:revive
const (
	COLLECTION_LIST   CollectionKind = "List"
	COLLECTION_SET    CollectionKind = "Set"
	COLLECTION_TUPLE  CollectionKind = "Tuple"
	COLLECTION_SLICE  CollectionKind = "Slice"
	COLLECTION_MAP    CollectionKind = "Map"
	COLLECTION_STRING CollectionKind = "String"
)

// Collection is the result of a BUILD_* opcode.
type Collection struct {
	Kind   CollectionKind
	Values []Expression
}

func (Collection) expressionNode() {}
func (c Collection) String() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = v.String()
	}
	return string(c.Kind) + "{" + strings.Join(parts, ", ") + "}"
}

// ConstMapEntry is one key/value pair of a ConstMap, in insertion order.
type ConstMapEntry struct {
	Key   pyconst.Constant
	Value Expression
}

// ConstMap is the keyword-annotation map built by BUILD_CONST_KEY_MAP,
// keyed by Constant (spec.md §3 ConstMap).
type ConstMap struct{ Entries []ConstMapEntry }

func (ConstMap) expressionNode() {}
func (m ConstMap) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Function is the closure-forming result of MAKE_FUNCTION.
type Function struct {
	Qualname    ident.Identifier
	Code        pyconst.Constant
	Annotations *ConstMap // nil when MAKE_FUNCTION's 0x04 bit was unset
}

func (Function) expressionNode() {}
func (f Function) String() string {
	return "Function<" + f.Qualname.String() + ">"
}

// Class is the placeholder pushed for a class-construction CALL_FUNCTION
// dispatched on BuiltinCaller{Tag: BuildClass}.
type Class struct{ Args []Expression }

func (Class) expressionNode() {}
func (c Class) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return "Class(" + strings.Join(parts, ", ") + ")"
}

// GetAttr is exp.name.
type GetAttr struct {
	Exp  Expression
	Name string
}

func (GetAttr) expressionNode() {}
func (g GetAttr) String() string { return g.Exp.String() + "." + g.Name }

// LoadMethod is the method-lookup marker pushed by LOAD_METHOD.
type LoadMethod struct {
	Exp  Expression
	Name string
}

func (LoadMethod) expressionNode() {}
func (l LoadMethod) String() string {
	return fmt.Sprintf("LoadMethod(%s, %s)", l.Exp, l.Name)
}

// ImportName is the result of IMPORT_NAME.
type ImportName struct {
	ID       string
	Fromlist []string
}

func (ImportName) expressionNode() {}
func (i ImportName) String() string {
	return fmt.Sprintf("ImportName{%s, fromlist=%v}", i.ID, i.Fromlist)
}

// ImportFrom is the result of IMPORT_FROM.
type ImportFrom struct {
	From ImportName
	Name string
}

func (ImportFrom) expressionNode() {}
func (i ImportFrom) String() string {
	return fmt.Sprintf("ImportFrom{%s, %s}", i.From, i.Name)
}

// LoadClosure is a closure-cell reference pushed by LOAD_CLOSURE.
type LoadClosure struct{ Name string }

func (LoadClosure) expressionNode() {}
func (l LoadClosure) String() string { return "LoadClosure(" + l.Name + ")" }

// Not is boolean negation, used to model the POP_JUMP_IF_* fallthrough
// convention (spec.md §4.4).
type Not struct{ Exp Expression }

func (Not) expressionNode() {}
func (n Not) String() string { return "!" + n.Exp.String() }
