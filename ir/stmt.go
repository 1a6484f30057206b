package ir

import (
	"fmt"
	"strings"

	"github.com/dr8co/pybc2ssa/ssa"
)

// Statement is the interface implemented by every form in the statement
// sum (spec.md §3 Statement).
type Statement interface {
	// Marker method to identify statement nodes.
	statementNode()
	// String returns a debug representation of the statement.
	String() string
}

// Arg is one call argument; Name is set only for a keyword argument.
type Arg struct {
	Name  string // empty for a positional argument
	Value Expression
}

func (a Arg) String() string {
	if a.Name == "" {
		return a.Value.String()
	}
	return a.Name + "=" + a.Value.String()
}

func argsString(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Assign is lhs := rhs, where lhs is a Var, LocalVar, GetAttr,
// Subscript, or Temp (POP_TOP) target and rhs any expression.
type Assign struct {
	LHS Expression
	RHS Expression
}

func (Assign) statementNode() {}
func (a Assign) String() string {
	return fmt.Sprintf("%s = %s", a.LHS, a.RHS)
}

// Call is lhs := callee(args...) for an ordinary call.
type Call struct {
	LHS    ssa.Name
	Callee Expression
	Args   []Arg
}

func (Call) statementNode() {}
func (c Call) String() string {
	return fmt.Sprintf("%s = call %s(%s)", c.LHS, c.Callee, argsString(c.Args))
}

// CallMethod is lhs := callee.method(args...), where Callee is the
// LoadMethod marker popped by CALL_METHOD.
type CallMethod struct {
	LHS    ssa.Name
	Callee Expression
	Args   []Arg
}

func (CallMethod) statementNode() {}
func (c CallMethod) String() string {
	return fmt.Sprintf("%s = callmethod %s(%s)", c.LHS, c.Callee, argsString(c.Args))
}

// ImportNameStmt records the side effect of an IMPORT_NAME, alongside
// the ImportName expression pushed to the stack (spec.md §4.4 IMPORT_NAME,
// §8 invariant 7).
type ImportNameStmt struct{ Import ImportName }

func (ImportNameStmt) statementNode() {}
func (i ImportNameStmt) String() string { return "import " + i.Import.String() }

// BuiltinCall is lhs := call(args...) dispatched on a BuiltinCaller.
type BuiltinCall struct {
	LHS  ssa.Name
	Call BuiltinCaller
	Args []Arg
}

func (BuiltinCall) statementNode() {}
func (b BuiltinCall) String() string {
	return fmt.Sprintf("%s = %s(%s)", b.LHS, b.Call, argsString(b.Args))
}

// SetupAnnotations records the side effect of SETUP_ANNOTATIONS.
type SetupAnnotations struct{}

func (SetupAnnotations) statementNode()  {}
func (SetupAnnotations) String() string { return "setup_annotations" }
