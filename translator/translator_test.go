package translator

import (
	"testing"

	"github.com/dr8co/pybc2ssa/ir"
	"github.com/dr8co/pybc2ssa/pyconst"
	"github.com/dr8co/pybc2ssa/pycode"
)

func instr(op string, arg, offset int) pycode.Instruction {
	return pycode.Instruction{OpName: op, Arg: arg, Offset: offset}
}

func jumpTarget(op string, arg, offset int) pycode.Instruction {
	i := instr(op, arg, offset)
	i.IsJumpTarget = true
	return i
}

func translate(t *testing.T, co *pycode.CodeObject) *Object {
	t.Helper()
	obj, err := Translate(co, Config{})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	return obj
}

// Scenario 1: LOAD_CONST 0 ; RETURN_VALUE -> Return(Const(Int 42)).
func TestReturnConstant(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		Consts:   []pyconst.Constant{pyconst.Int(42)},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 0, 0),
			instr(OP_RETURN_VALUE, 0, 2),
		},
	}
	obj := translate(t, co)

	if len(obj.Toplevel) != 1 {
		t.Fatalf("len(Toplevel) = %d, want 1", len(obj.Toplevel))
	}
	node := obj.Toplevel[0]
	if len(node.Stmts) != 0 {
		t.Errorf("len(Stmts) = %d, want 0", len(node.Stmts))
	}
	ret, ok := node.Last.(ir.Return)
	if !ok {
		t.Fatalf("Last = %T, want ir.Return", node.Last)
	}
	c, ok := ret.Exp.(ir.Const)
	if !ok {
		t.Fatalf("Return.Exp = %T, want ir.Const", ret.Exp)
	}
	if v, ok := c.Value.Int(); !ok || v != 42 {
		t.Errorf("Return.Exp value = (%d, %v), want (42, true)", v, ok)
	}
}

// Scenario 2: LOAD_FAST 0 ; LOAD_FAST 1 ; BINARY_ADD ; RETURN_VALUE ->
// one BuiltinCall statement n0 = Binary.Add(a, b), terminator Return(Temp n0).
func TestBinaryAddProducesOneTemp(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		VarNames: []string{"a", "b"},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_FAST, 0, 0),
			instr(OP_LOAD_FAST, 1, 2),
			instr("BINARY_ADD", 0, 4),
			instr(OP_RETURN_VALUE, 0, 6),
		},
	}
	obj := translate(t, co)

	if len(obj.Toplevel) != 1 {
		t.Fatalf("len(Toplevel) = %d, want 1", len(obj.Toplevel))
	}
	node := obj.Toplevel[0]
	if len(node.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(node.Stmts))
	}
	call, ok := node.Stmts[0].Stmt.(ir.BuiltinCall)
	if !ok {
		t.Fatalf("Stmts[0] = %T, want ir.BuiltinCall", node.Stmts[0].Stmt)
	}
	if call.Call.Tag != ir.TAG_BINARY || call.Call.Op != ir.OP_ADD {
		t.Errorf("Call = %+v, want Binary.Add", call.Call)
	}
	if len(call.Args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(call.Args))
	}
	if lv, ok := call.Args[0].Value.(ir.LocalVar); !ok || lv.Name != "a" {
		t.Errorf("Args[0] = %v, want LocalVar(a)", call.Args[0].Value)
	}
	if lv, ok := call.Args[1].Value.(ir.LocalVar); !ok || lv.Name != "b" {
		t.Errorf("Args[1] = %v, want LocalVar(b)", call.Args[1].Value)
	}

	ret, ok := node.Last.(ir.Return)
	if !ok {
		t.Fatalf("Last = %T, want ir.Return", node.Last)
	}
	tmp, ok := ret.Exp.(ir.Temp)
	if !ok {
		t.Fatalf("Return.Exp = %T, want ir.Temp", ret.Exp)
	}
	if tmp.Name != call.LHS {
		t.Errorf("Return.Exp = %v, want Temp(%v)", tmp.Name, call.LHS)
	}
}

// Scenario 3: LOAD_FAST 0 ; POP_JUMP_IF_FALSE 10 ; two fall-through
// instructions ; two instructions at the jump target -> three nodes, the
// first ending in an If terminator.
func TestPopJumpIfFalseSplitsIntoThreeNodes(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		VarNames: []string{"cond"},
		Consts:   []pyconst.Constant{pyconst.Int(1), pyconst.Int(2)},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_FAST, 0, 0),
			instr(OP_POP_JUMP_IF_FALSE, 10, 2),
			instr(OP_LOAD_CONST, 0, 4),
			instr(OP_RETURN_VALUE, 0, 6),
			jumpTarget(OP_LOAD_CONST, 1, 10),
			instr(OP_RETURN_VALUE, 0, 12),
		},
	}
	obj := translate(t, co)

	if len(obj.Toplevel) != 3 {
		t.Fatalf("len(Toplevel) = %d, want 3", len(obj.Toplevel))
	}

	head := obj.Toplevel[0]
	branch, ok := head.Last.(ir.If)
	if !ok {
		t.Fatalf("head.Last = %T, want ir.If", head.Last)
	}
	thenJump, ok := branch.Then.(ir.Jump)
	if !ok || len(thenJump.Targets) != 1 {
		t.Fatalf("branch.Then = %v, want a single-target Jump", branch.Then)
	}
	elseJump, ok := branch.Else.(ir.Jump)
	if !ok || len(elseJump.Targets) != 1 {
		t.Fatalf("branch.Else = %v, want a single-target Jump", branch.Else)
	}

	fallthroughNode := obj.Toplevel[1]
	if fallthroughNode.Label != thenJump.Targets[0].Label {
		t.Errorf("fall-through node label = %q, want %q", fallthroughNode.Label, thenJump.Targets[0].Label)
	}
	targetNode := obj.Toplevel[2]
	if targetNode.Label != elseJump.Targets[0].Label {
		t.Errorf("jump-target node label = %q, want %q", targetNode.Label, elseJump.Targets[0].Label)
	}

	if _, ok := fallthroughNode.Last.(ir.Return); !ok {
		t.Errorf("fall-through node Last = %T, want ir.Return", fallthroughNode.Last)
	}
	if _, ok := targetNode.Last.(ir.Return); !ok {
		t.Errorf("jump-target node Last = %T, want ir.Return", targetNode.Last)
	}
}

// Scenario 4: IMPORT_NAME with fromlist=Null, level=0 yields
// ImportName{ID: "os", Fromlist: []} and a matching ImportNameStmt.
func TestImportNameNoFromlist(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		Names:    []string{"os"},
		Consts:   []pyconst.Constant{pyconst.Int(0), pyconst.Null},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 0, 0), // level = 0
			instr(OP_LOAD_CONST, 1, 2), // fromlist = Null
			instr(OP_IMPORT_NAME, 0, 4),
			instr(OP_RETURN_VALUE, 0, 6),
		},
	}
	obj := translate(t, co)

	node := obj.Toplevel[0]
	if len(node.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(node.Stmts))
	}
	stmt, ok := node.Stmts[0].Stmt.(ir.ImportNameStmt)
	if !ok {
		t.Fatalf("Stmts[0] = %T, want ir.ImportNameStmt", node.Stmts[0].Stmt)
	}
	if stmt.Import.ID != "os" || len(stmt.Import.Fromlist) != 0 {
		t.Errorf("Import = %+v, want ID=os, empty Fromlist", stmt.Import)
	}

	ret, ok := node.Last.(ir.Return)
	if !ok {
		t.Fatalf("Last = %T, want ir.Return", node.Last)
	}
	imp, ok := ret.Exp.(ir.ImportName)
	if !ok || imp.ID != "os" {
		t.Errorf("Return.Exp = %v, want ImportName{os}", ret.Exp)
	}
}

// Scenario 5: a FOR_ITER loop (GET_ITER ; FOR_ITER ; STORE_FAST ;
// JUMP_ABSOLUTE back to FOR_ITER ; exit) exercises the back-edge label and
// the "next" label's prelude (re-deriving the loop item from the iterator).
func TestForIterLoopPreludeAndBackEdge(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		VarNames: []string{"it", "x"},
		Consts:   []pyconst.Constant{pyconst.Null},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_FAST, 0, 0),
			instr(OP_GET_ITER, 0, 2),
			jumpTarget(OP_FOR_ITER, 4, 4), // back-edge target of the JUMP_ABSOLUTE below
			instr(OP_STORE_FAST, 1, 6),
			instr(OP_JUMP_ABSOLUTE, 4, 8),
			instr(OP_LOAD_CONST, 0, 10),
			instr(OP_RETURN_VALUE, 0, 12),
		},
	}
	obj := translate(t, co)

	if len(obj.Toplevel) != 4 {
		t.Fatalf("len(Toplevel) = %d, want 4", len(obj.Toplevel))
	}
	loopHead := obj.Toplevel[1]
	branch, ok := loopHead.Last.(ir.If)
	if !ok {
		t.Fatalf("loop head Last = %T, want ir.If", loopHead.Last)
	}

	body := obj.Toplevel[2]
	if len(body.Stmts) == 0 {
		t.Fatal("loop body has no statements; expected the prelude's IterData call")
	}
	firstCall, ok := body.Stmts[0].Stmt.(ir.BuiltinCall)
	if !ok || firstCall.Call.Tag != ir.TAG_ITER_DATA {
		t.Errorf("body.Stmts[0] = %v, want a BuiltinCall tagged IterData (the FOR_ITER prelude)", body.Stmts[0].Stmt)
	}

	bodyJump, ok := body.Last.(ir.Jump)
	if !ok || len(bodyJump.Targets) != 1 {
		t.Fatalf("body.Last = %v, want a single-target Jump", body.Last)
	}
	if bodyJump.Targets[0].Label != loopHead.Label {
		t.Errorf("back-edge target = %q, want loop head label %q", bodyJump.Targets[0].Label, loopHead.Label)
	}

	thenJump, ok := branch.Then.(ir.Jump)
	if !ok || thenJump.Targets[0].Label != body.Label {
		t.Errorf("loop head Then = %v, want a Jump to the body label %q", branch.Then, body.Label)
	}

	exit := obj.Toplevel[3]
	if _, ok := exit.Last.(ir.Return); !ok {
		t.Errorf("exit node Last = %T, want ir.Return", exit.Last)
	}
}

// Scenario 6: MAKE_FUNCTION with flags=0x04 (annotations only) produces a
// Function expression and registers functions["f"].
func TestMakeFunctionWithAnnotations(t *testing.T) {
	inner := &pycode.CodeObject{
		Name:     "f",
		Filename: "mod.py",
		Consts:   []pyconst.Constant{pyconst.Null},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 0, 0),
			instr(OP_RETURN_VALUE, 0, 2),
		},
	}
	co := &pycode.CodeObject{
		Filename: "mod.py",
		Consts: []pyconst.Constant{
			pyconst.CodeObj(&pyconst.Code{Handle: inner}), // 0: code
			pyconst.String("f"),                           // 1: qualname
			pyconst.Null,                                  // 2: annotation value
			pyconst.Tuple([]pyconst.Constant{pyconst.String("return")}), // 3: annotation keys
		},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 2, 0),
			instr(OP_LOAD_CONST, 3, 2),
			instr(OP_BUILD_CONST_KEY_MAP, 1, 4),
			instr(OP_LOAD_CONST, 0, 6),
			instr(OP_LOAD_CONST, 1, 8),
			instr(OP_MAKE_FUNCTION, 0x04, 10),
			instr(OP_RETURN_VALUE, 0, 12),
		},
	}
	obj := translate(t, co)

	node := obj.Toplevel[0]
	ret, ok := node.Last.(ir.Return)
	if !ok {
		t.Fatalf("Last = %T, want ir.Return", node.Last)
	}
	fn, ok := ret.Exp.(ir.Function)
	if !ok {
		t.Fatalf("Return.Exp = %T, want ir.Function", ret.Exp)
	}
	if got, want := fn.Qualname.String(), "mod.f"; got != want {
		t.Errorf("Qualname = %q, want %q", got, want)
	}
	if fn.Annotations == nil || len(fn.Annotations.Entries) != 1 {
		t.Fatalf("Annotations = %v, want one entry", fn.Annotations)
	}
	if fn.Annotations.Entries[0].Key.String() != `"return"` {
		t.Errorf("Annotations.Entries[0].Key = %v, want \"return\"", fn.Annotations.Entries[0].Key)
	}

	id, ok := obj.Functions["f"]
	if !ok || id.String() != "mod.f" {
		t.Errorf("Functions[f] = %v, want mod.f", id)
	}

	if len(obj.Objects) != 1 {
		t.Fatalf("len(Objects) = %d, want 1", len(obj.Objects))
	}
	if got, want := obj.Objects[0].Object.Name.String(), "mod.f"; got != want {
		t.Errorf("nested Object name = %q, want %q", got, want)
	}
}

// MAKE_FUNCTION with flags=0 must consume exactly the code object and
// qualname: no optional operand is popped.
func TestMakeFunctionNoFlagsConsumesTwoStackEntries(t *testing.T) {
	inner := &pycode.CodeObject{Name: "g", Filename: "mod.py"}
	co := &pycode.CodeObject{
		Filename: "mod.py",
		Consts: []pyconst.Constant{
			pyconst.CodeObj(&pyconst.Code{Handle: inner}),
			pyconst.String("g"),
		},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 0, 0),
			instr(OP_LOAD_CONST, 1, 2),
			instr(OP_MAKE_FUNCTION, 0, 4),
			instr(OP_RETURN_VALUE, 0, 6),
		},
	}
	obj := translate(t, co)

	ret := obj.Toplevel[0].Last.(ir.Return)
	fn, ok := ret.Exp.(ir.Function)
	if !ok {
		t.Fatalf("Return.Exp = %T, want ir.Function", ret.Exp)
	}
	if fn.Annotations != nil {
		t.Errorf("Annotations = %v, want nil when flags=0", fn.Annotations)
	}
}

// UNPACK_SEQUENCE with a non-positive count is an external error.
func TestUnpackSequenceRejectsNonPositiveCount(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		VarNames: []string{"x"},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_FAST, 0, 0),
			instr(OP_UNPACK_SEQUENCE, 0, 2),
			instr(OP_RETURN_VALUE, 0, 4),
		},
	}
	_, err := Translate(co, Config{})
	if err == nil {
		t.Fatal("Translate() error = nil, want non-nil for UNPACK_SEQUENCE 0")
	}
	tErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error = %T, want *Error", err)
	}
	if _, ok := tErr.Kind.(UnpackSequence); !ok {
		t.Errorf("Kind = %T, want UnpackSequence", tErr.Kind)
	}
	if tErr.Severity != SEVERITY_EXTERNAL {
		t.Errorf("Severity = %q, want external", tErr.Severity)
	}
}

// UNPACK_SEQUENCE 1 yields a single Subscript{TOS, 0}.
func TestUnpackSequenceOfOne(t *testing.T) {
	obj := translate(t, &pycode.CodeObject{
		Filename: "mod.py",
		VarNames: []string{"seq", "x"},
		Consts:   []pyconst.Constant{pyconst.Null},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_CONST, 0, 0),
			instr(OP_LOAD_FAST, 0, 2),
			instr(OP_UNPACK_SEQUENCE, 1, 4),
			instr(OP_STORE_FAST, 1, 6),
			instr(OP_RETURN_VALUE, 0, 8),
		},
	})

	node := obj.Toplevel[0]
	assign, ok := node.Stmts[0].Stmt.(ir.Assign)
	if !ok {
		t.Fatalf("Stmts[0] = %T, want ir.Assign", node.Stmts[0].Stmt)
	}
	sub, ok := assign.RHS.(ir.Subscript)
	if !ok {
		t.Fatalf("Assign.RHS = %T, want ir.Subscript", assign.RHS)
	}
	idx, ok := sub.Index.(ir.Const)
	if !ok {
		t.Fatalf("Subscript.Index = %T, want ir.Const", sub.Index)
	}
	if v, ok := idx.Value.Int(); !ok || v != 0 {
		t.Errorf("Subscript.Index = (%d, %v), want (0, true)", v, ok)
	}
}

// BUILD_MAP 0 produces an empty Map collection.
func TestBuildMapZero(t *testing.T) {
	co := &pycode.CodeObject{
		Filename: "mod.py",
		Instrs: []pycode.Instruction{
			instr(OP_BUILD_MAP, 0, 0),
			instr(OP_RETURN_VALUE, 0, 2),
		},
	}
	obj := translate(t, co)
	ret := obj.Toplevel[0].Last.(ir.Return)
	coll, ok := ret.Exp.(ir.Collection)
	if !ok {
		t.Fatalf("Return.Exp = %T, want ir.Collection", ret.Exp)
	}
	if coll.Kind != ir.COLLECTION_MAP || len(coll.Values) != 0 {
		t.Errorf("Collection = %+v, want empty Map", coll)
	}
}

// At the top level, name resolution ignores the "global" flag: LOAD_NAME
// and LOAD_GLOBAL against the same name resolve to the same identifier.
func TestTopLevelLoadNameAndLoadGlobalAgree(t *testing.T) {
	loadNameObj := translate(t, &pycode.CodeObject{
		Filename: "mod.py",
		Names:    []string{"x"},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_NAME, 0, 0),
			instr(OP_RETURN_VALUE, 0, 2),
		},
	})
	loadGlobalObj := translate(t, &pycode.CodeObject{
		Filename: "mod.py",
		Names:    []string{"x"},
		Instrs: []pycode.Instruction{
			instr(OP_LOAD_GLOBAL, 0, 0),
			instr(OP_RETURN_VALUE, 0, 2),
		},
	})

	nameRet := loadNameObj.Toplevel[0].Last.(ir.Return)
	globalRet := loadGlobalObj.Toplevel[0].Last.(ir.Return)
	nameVar, ok := nameRet.Exp.(ir.Var)
	if !ok {
		t.Fatalf("LOAD_NAME result = %T, want ir.Var", nameRet.Exp)
	}
	globalVar, ok := globalRet.Exp.(ir.Var)
	if !ok {
		t.Fatalf("LOAD_GLOBAL result = %T, want ir.Var", globalRet.Exp)
	}
	if nameVar.ID.String() != globalVar.ID.String() {
		t.Errorf("LOAD_NAME resolved to %q, LOAD_GLOBAL resolved to %q, want equal at top level", nameVar.ID, globalVar.ID)
	}
}
