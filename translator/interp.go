package translator

import (
	"strings"

	"github.com/dr8co/pybc2ssa/cfg"
	"github.com/dr8co/pybc2ssa/ident"
	"github.com/dr8co/pybc2ssa/ir"
	"github.com/dr8co/pybc2ssa/pyconst"
	"github.com/dr8co/pybc2ssa/pycode"
	"github.com/dr8co/pybc2ssa/stack"
)

//nolint:revive
const (
	OP_LOAD_CONST            = "LOAD_CONST"
	OP_LOAD_NAME             = "LOAD_NAME"
	OP_LOAD_GLOBAL           = "LOAD_GLOBAL"
	OP_LOAD_FAST             = "LOAD_FAST"
	OP_LOAD_ATTR             = "LOAD_ATTR"
	OP_STORE_NAME            = "STORE_NAME"
	OP_STORE_GLOBAL          = "STORE_GLOBAL"
	OP_STORE_FAST            = "STORE_FAST"
	OP_STORE_ATTR            = "STORE_ATTR"
	OP_STORE_SUBSCR          = "STORE_SUBSCR"
	OP_RETURN_VALUE          = "RETURN_VALUE"
	OP_CALL_FUNCTION         = "CALL_FUNCTION"
	OP_POP_TOP               = "POP_TOP"
	OP_MAKE_FUNCTION         = "MAKE_FUNCTION"
	OP_BUILD_CONST_KEY_MAP   = "BUILD_CONST_KEY_MAP"
	OP_BUILD_LIST            = "BUILD_LIST"
	OP_BUILD_SET             = "BUILD_SET"
	OP_BUILD_TUPLE           = "BUILD_TUPLE"
	OP_BUILD_SLICE           = "BUILD_SLICE"
	OP_BUILD_STRING          = "BUILD_STRING"
	OP_BUILD_MAP             = "BUILD_MAP"
	OP_BINARY_SUBSCR         = "BINARY_SUBSCR"
	OP_LOAD_BUILD_CLASS      = "LOAD_BUILD_CLASS"
	OP_LOAD_METHOD           = "LOAD_METHOD"
	OP_CALL_METHOD           = "CALL_METHOD"
	OP_SETUP_ANNOTATIONS     = "SETUP_ANNOTATIONS"
	OP_IMPORT_NAME           = "IMPORT_NAME"
	OP_IMPORT_FROM           = "IMPORT_FROM"
	OP_COMPARE_OP            = "COMPARE_OP"
	OP_LOAD_CLOSURE          = "LOAD_CLOSURE"
	OP_DUP_TOP               = "DUP_TOP"
	OP_UNPACK_SEQUENCE       = "UNPACK_SEQUENCE"
	OP_FORMAT_VALUE          = "FORMAT_VALUE"
	OP_POP_JUMP_IF_TRUE      = "POP_JUMP_IF_TRUE"
	OP_POP_JUMP_IF_FALSE     = "POP_JUMP_IF_FALSE"
	OP_JUMP_FORWARD          = "JUMP_FORWARD"
	OP_JUMP_ABSOLUTE         = "JUMP_ABSOLUTE"
	OP_GET_ITER              = "GET_ITER"
	OP_FOR_ITER              = "FOR_ITER"
	OP_JUMP_IF_TRUE_OR_POP   = "JUMP_IF_TRUE_OR_POP"
	OP_JUMP_IF_FALSE_OR_POP  = "JUMP_IF_FALSE_OR_POP"
)

var binaryOps = map[string]ir.BuiltinOp{
	"BINARY_ADD":             ir.OP_ADD,
	"BINARY_SUBTRACT":        ir.OP_SUBTRACT,
	"BINARY_AND":             ir.OP_AND,
	"BINARY_FLOOR_DIVIDE":    ir.OP_FLOOR_DIVIDE,
	"BINARY_LSHIFT":          ir.OP_LSHIFT,
	"BINARY_MATRIX_MULTIPLY": ir.OP_MATRIX_MULTIPLY,
	"BINARY_MODULO":          ir.OP_MODULO,
	"BINARY_MULTIPLY":        ir.OP_MULTIPLY,
	"BINARY_OR":              ir.OP_OR,
	"BINARY_POWER":           ir.OP_POWER,
	"BINARY_RSHIFT":          ir.OP_RSHIFT,
	"BINARY_TRUE_DIVIDE":     ir.OP_TRUE_DIVIDE,
	"BINARY_XOR":             ir.OP_XOR,
}

var inplaceOps = map[string]ir.BuiltinOp{
	"INPLACE_ADD":             ir.OP_ADD,
	"INPLACE_SUBTRACT":        ir.OP_SUBTRACT,
	"INPLACE_AND":             ir.OP_AND,
	"INPLACE_FLOOR_DIVIDE":    ir.OP_FLOOR_DIVIDE,
	"INPLACE_LSHIFT":          ir.OP_LSHIFT,
	"INPLACE_MATRIX_MULTIPLY": ir.OP_MATRIX_MULTIPLY,
	"INPLACE_MODULO":          ir.OP_MODULO,
	"INPLACE_MULTIPLY":        ir.OP_MULTIPLY,
	"INPLACE_OR":              ir.OP_OR,
	"INPLACE_POWER":           ir.OP_POWER,
	"INPLACE_RSHIFT":          ir.OP_RSHIFT,
	"INPLACE_TRUE_DIVIDE":     ir.OP_TRUE_DIVIDE,
	"INPLACE_XOR":             ir.OP_XOR,
}

var unaryOps = map[string]ir.BuiltinOp{
	"UNARY_POSITIVE": ir.OP_POSITIVE,
	"UNARY_NEGATIVE": ir.OP_NEGATIVE,
	"UNARY_NOT":      ir.OP_NOT,
	"UNARY_INVERT":   ir.OP_INVERT,
}

// step interprets the instruction at idx, mutating s: pushing/popping the
// symbolic stack and emitting statements. It returns a non-nil Terminator
// exactly when this instruction ends its basic block (spec.md §4.4).
func (s *State) step(idx int) (ir.Terminator, error) {
	instr := s.code.Instrs[idx]
	s.curLoc = locFor(instr)
	name := instr.OpName
	arg := instr.Arg
	if s.debug {
		s.logger.Debug("interpret instruction", "loc", s.curLoc.String(), "op", name, "arg", arg, "stack", s.stk.Snapshot())
	}

	if op, ok := binaryOps[name]; ok {
		return nil, s.binaryLike(ir.Binary(op))
	}
	if op, ok := inplaceOps[name]; ok {
		return nil, s.binaryLike(ir.Inplace(op))
	}
	if op, ok := unaryOps[name]; ok {
		return nil, s.unaryLike(ir.Unary(op))
	}

	switch name {
	case OP_LOAD_CONST:
		s.stk.Push(ir.Const{Value: s.code.Consts[arg]})
		return nil, nil

	case OP_LOAD_NAME:
		s.stk.Push(ir.Var{ID: s.names.Resolve(s.code.Names[arg], false)})
		return nil, nil

	case OP_LOAD_GLOBAL:
		s.stk.Push(ir.Var{ID: s.names.Resolve(s.code.Names[arg], true)})
		return nil, nil

	case OP_LOAD_FAST:
		s.stk.Push(ir.LocalVar{Name: s.code.VarNames[arg]})
		return nil, nil

	case OP_LOAD_ATTR:
		x, err := s.pop(OP_LOAD_ATTR)
		if err != nil {
			return nil, err
		}
		s.stk.Push(ir.GetAttr{Exp: x, Name: s.code.Names[arg]})
		return nil, nil

	case OP_STORE_NAME:
		return nil, s.storeName(s.code.Names[arg], false)

	case OP_STORE_GLOBAL:
		return nil, s.storeName(s.code.Names[arg], true)

	case OP_STORE_FAST:
		rhs, err := s.pop(OP_STORE_FAST)
		if err != nil {
			return nil, err
		}
		s.emit(ir.Assign{LHS: ir.LocalVar{Name: s.code.VarNames[arg]}, RHS: rhs})
		return nil, nil

	case OP_STORE_ATTR:
		recv, err := s.pop(OP_STORE_ATTR)
		if err != nil {
			return nil, err
		}
		val, err := s.pop(OP_STORE_ATTR)
		if err != nil {
			return nil, err
		}
		s.emit(ir.Assign{LHS: ir.GetAttr{Exp: recv, Name: s.code.Names[arg]}, RHS: val})
		return nil, nil

	case OP_STORE_SUBSCR:
		index, err := s.pop(OP_STORE_SUBSCR)
		if err != nil {
			return nil, err
		}
		recv, err := s.pop(OP_STORE_SUBSCR)
		if err != nil {
			return nil, err
		}
		val, err := s.pop(OP_STORE_SUBSCR)
		if err != nil {
			return nil, err
		}
		s.emit(ir.Assign{LHS: ir.Subscript{Exp: recv, Index: index}, RHS: val})
		return nil, nil

	case OP_POP_TOP:
		return nil, s.popTop()

	case OP_COMPARE_OP:
		return nil, s.compareOp(arg)

	case OP_BUILD_LIST:
		return nil, s.buildCollection(ir.COLLECTION_LIST, arg)
	case OP_BUILD_SET:
		return nil, s.buildCollection(ir.COLLECTION_SET, arg)
	case OP_BUILD_TUPLE:
		return nil, s.buildCollection(ir.COLLECTION_TUPLE, arg)
	case OP_BUILD_SLICE:
		return nil, s.buildCollection(ir.COLLECTION_SLICE, arg)
	case OP_BUILD_STRING:
		return nil, s.buildCollection(ir.COLLECTION_STRING, arg)
	case OP_BUILD_MAP:
		return nil, s.buildCollection(ir.COLLECTION_MAP, arg*2)

	case OP_BUILD_CONST_KEY_MAP:
		return nil, s.buildConstKeyMap(arg)

	case OP_BINARY_SUBSCR:
		index, err := s.pop(OP_BINARY_SUBSCR)
		if err != nil {
			return nil, err
		}
		recv, err := s.pop(OP_BINARY_SUBSCR)
		if err != nil {
			return nil, err
		}
		s.stk.Push(ir.Subscript{Exp: recv, Index: index})
		return nil, nil

	case OP_MAKE_FUNCTION:
		return nil, s.makeFunction(arg)

	case OP_CALL_FUNCTION:
		return nil, s.callFunction(arg)

	case OP_LOAD_BUILD_CLASS:
		s.stk.Push(ir.BuildClass())
		return nil, nil

	case OP_LOAD_METHOD:
		x, err := s.pop(OP_LOAD_METHOD)
		if err != nil {
			return nil, err
		}
		s.stk.Push(ir.LoadMethod{Exp: x, Name: s.code.Names[arg]})
		return nil, nil

	case OP_CALL_METHOD:
		return nil, s.callMethod(arg)

	case OP_SETUP_ANNOTATIONS:
		s.names.Register("__annotations__", s.names.Module().Extend("__annotations__"), false)
		s.emit(ir.SetupAnnotations{})
		return nil, nil

	case OP_IMPORT_NAME:
		return nil, s.importName(arg)

	case OP_IMPORT_FROM:
		return nil, s.importFrom(arg)

	case OP_LOAD_CLOSURE:
		var cellName string
		if arg < len(s.code.CellVars) {
			cellName = s.code.CellVars[arg]
		} else {
			cellName = s.code.FreeVars[arg-len(s.code.CellVars)]
		}
		s.stk.Push(ir.LoadClosure{Name: cellName})
		return nil, nil

	case OP_DUP_TOP:
		top, err := s.peek(OP_DUP_TOP)
		if err != nil {
			return nil, err
		}
		s.stk.Push(top)
		return nil, nil

	case OP_UNPACK_SEQUENCE:
		return nil, s.unpackSequence(arg)

	case OP_FORMAT_VALUE:
		return nil, s.formatValue(arg)

	case OP_RETURN_VALUE:
		ret, err := s.pop(OP_RETURN_VALUE)
		if err != nil {
			return nil, err
		}
		return ir.Return{Exp: ret}, nil

	case OP_POP_JUMP_IF_TRUE, OP_POP_JUMP_IF_FALSE:
		return s.popJumpIf(idx, name, arg)

	case OP_JUMP_IF_TRUE_OR_POP, OP_JUMP_IF_FALSE_OR_POP:
		return s.jumpIfOrPop(idx, name, arg)

	case OP_JUMP_FORWARD:
		return s.jumpForward(idx, arg)

	case OP_JUMP_ABSOLUTE:
		return s.jumpAbsolute(arg)

	case OP_GET_ITER:
		x, err := s.pop(OP_GET_ITER)
		if err != nil {
			return nil, err
		}
		t := s.fresh()
		s.emit(ir.BuiltinCall{LHS: t, Call: ir.GetIter(), Args: []ir.Arg{{Value: x}}})
		s.stk.Push(ir.Temp{Name: t})
		return nil, nil

	case OP_FOR_ITER:
		return s.forIter(idx, arg)

	default:
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, UnsupportedOpcode{Name: name})
	}
}

func locFor(instr pycode.Instruction) Loc {
	return Loc{Offset: instr.Offset, Line: instr.StartsLine}
}

func (s *State) binaryLike(call ir.BuiltinCaller) error {
	right, err := s.pop(call.String())
	if err != nil {
		return err
	}
	left, err := s.pop(call.String())
	if err != nil {
		return err
	}
	t := s.fresh()
	s.emit(ir.BuiltinCall{LHS: t, Call: call, Args: []ir.Arg{{Value: left}, {Value: right}}})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func (s *State) unaryLike(call ir.BuiltinCaller) error {
	operand, err := s.pop(call.String())
	if err != nil {
		return err
	}
	t := s.fresh()
	s.emit(ir.BuiltinCall{LHS: t, Call: call, Args: []ir.Arg{{Value: operand}}})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func (s *State) compareOp(n int) error {
	cmp, ok := ir.LookupCompare(n)
	if !ok {
		return newErr(s.curLoc, SEVERITY_EXTERNAL, CompareOp{N: n})
	}
	right, err := s.pop(OP_COMPARE_OP)
	if err != nil {
		return err
	}
	left, err := s.pop(OP_COMPARE_OP)
	if err != nil {
		return err
	}
	t := s.fresh()
	s.emit(ir.BuiltinCall{LHS: t, Call: ir.Compare(cmp), Args: []ir.Arg{{Value: left}, {Value: right}}})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func (s *State) popTop() error {
	v, err := s.pop(OP_POP_TOP)
	if err != nil {
		return err
	}
	switch v.(type) {
	case ir.ImportName, ir.Temp:
		return nil
	default:
		t := s.fresh()
		s.emit(ir.Assign{LHS: ir.Temp{Name: t}, RHS: v})
		return nil
	}
}

func (s *State) storeName(name string, global bool) error {
	rhs, err := s.pop(OP_STORE_NAME)
	if err != nil {
		return err
	}
	var target ident.Identifier
	if global {
		target = s.names.Module().RootIdentifier().Extend(name)
	} else {
		target = s.names.Module().Extend(name)
	}
	s.emit(ir.Assign{LHS: ir.Var{ID: target}, RHS: rhs})

	if importID, ok := importTargetIdentifier(rhs); ok {
		s.names.Register(name, importID, global)
	}
	return nil
}

// importTargetIdentifier computes the identifier later lookups of name
// should resolve to after `name = import ...` or `name = from ... import
// ...`, per spec.md §4.4 STORE_NAME.
func importTargetIdentifier(rhs ir.Expression) (ident.Identifier, bool) {
	switch v := rhs.(type) {
	case ir.ImportName:
		return ident.New(v.ID, ident.IMPORTED_KIND), true
	case ir.ImportFrom:
		return ident.New(v.From.ID, ident.IMPORTED_KIND).Extend(v.Name), true
	default:
		return ident.Identifier{}, false
	}
}

func (s *State) buildCollection(kind ir.CollectionKind, n int) error {
	values, err := s.popN(string(kind), n)
	if err != nil {
		return err
	}
	s.stk.Push(ir.Collection{Kind: kind, Values: values})
	return nil
}

func (s *State) buildConstKeyMap(n int) error {
	keysExp, err := s.pop(OP_BUILD_CONST_KEY_MAP)
	if err != nil {
		return err
	}
	keysConst, ok := keysExp.(ir.Const)
	if !ok {
		return newErr(s.curLoc, SEVERITY_INTERNAL, BuildConstKeyMapKeys{Exp: keysExp.String()})
	}
	ks, ok := keysConst.Value.Elems()
	if !ok {
		return newErr(s.curLoc, SEVERITY_INTERNAL, BuildConstKeyMapKeys{Exp: keysExp.String()})
	}
	if len(ks) != n {
		return newErr(s.curLoc, SEVERITY_INTERNAL, BuildConstKeyMapLength{M: len(ks), N: n})
	}
	values, err := s.popN(OP_BUILD_CONST_KEY_MAP, n)
	if err != nil {
		return err
	}
	entries := make([]ir.ConstMapEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = ir.ConstMapEntry{Key: ks[i], Value: values[i]}
	}
	s.stk.Push(ir.ConstMap{Entries: entries})
	return nil
}

func (s *State) makeFunction(flags int) error {
	qualnameExp, err := s.pop(OP_MAKE_FUNCTION)
	if err != nil {
		return err
	}
	qualnameConst, ok := qualnameExp.(ir.Const)
	if !ok {
		return newErr(s.curLoc, SEVERITY_INTERNAL, MakeFunction{What: "qualname string", Got: qualnameExp.String()})
	}
	rawQualname, ok := qualnameConst.Value.Str()
	if !ok {
		return newErr(s.curLoc, SEVERITY_INTERNAL, MakeFunction{What: "qualname string", Got: qualnameExp.String()})
	}

	codeExp, err := s.pop(OP_MAKE_FUNCTION)
	if err != nil {
		return err
	}
	codeConst, ok := codeExp.(ir.Const)
	if !ok || codeConst.Value.Kind() != pyconst.CODE_KIND {
		return newErr(s.curLoc, SEVERITY_INTERNAL, MakeFunction{What: "code object", Got: codeExp.String()})
	}

	if flags&0x08 != 0 {
		if _, err := s.pop(OP_MAKE_FUNCTION); err != nil {
			return err
		}
	}

	var annotations *ir.ConstMap
	if flags&0x04 != 0 {
		annExp, err := s.pop(OP_MAKE_FUNCTION)
		if err != nil {
			return err
		}
		ann, ok := annExp.(ir.ConstMap)
		if !ok {
			return newErr(s.curLoc, SEVERITY_INTERNAL, MakeFunction{What: "annotations const map", Got: annExp.String()})
		}
		annotations = &ann
	}

	if flags&0x02 != 0 {
		if _, err := s.pop(OP_MAKE_FUNCTION); err != nil {
			return err
		}
	}
	if flags&0x01 != 0 {
		if _, err := s.pop(OP_MAKE_FUNCTION); err != nil {
			return err
		}
	}

	qualname := s.names.Module().RootIdentifier().Split(rawQualname)
	s.stk.Push(ir.Function{Qualname: qualname, Code: codeConst.Value, Annotations: annotations})

	parts := strings.Split(rawQualname, ".")
	shortName := parts[len(parts)-1]
	s.funcs[shortName] = qualname
	return nil
}

func (s *State) callFunction(n int) error {
	args, err := s.popN(OP_CALL_FUNCTION, n)
	if err != nil {
		return err
	}
	callee, err := s.pop(OP_CALL_FUNCTION)
	if err != nil {
		return err
	}

	if bc, ok := callee.(ir.BuiltinCaller); ok && bc.Tag == ir.TAG_BUILD_CLASS {
		if len(args) < 2 {
			return newErr(s.curLoc, SEVERITY_EXTERNAL, LoadBuildClass{Args: len(args)})
		}
		nameConst, ok := args[1].(ir.Const)
		className, isStr := "", false
		if ok {
			className, isStr = nameConst.Value.Str()
		}
		if !isStr {
			return newErr(s.curLoc, SEVERITY_EXTERNAL, LoadBuildClassName{Exp: args[1].String()})
		}
		s.classes[className] = struct{}{}
		s.stk.Push(ir.Class{Args: args})
		return nil
	}

	if bc, ok := callee.(ir.BuiltinCaller); ok {
		t := s.fresh()
		s.emit(ir.BuiltinCall{LHS: t, Call: bc, Args: toArgs(args)})
		s.stk.Push(ir.Temp{Name: t})
		return nil
	}

	t := s.fresh()
	s.emit(ir.Call{LHS: t, Callee: callee, Args: toArgs(args)})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func (s *State) callMethod(n int) error {
	args, err := s.popN(OP_CALL_METHOD, n)
	if err != nil {
		return err
	}
	callee, err := s.pop(OP_CALL_METHOD)
	if err != nil {
		return err
	}
	t := s.fresh()
	s.emit(ir.CallMethod{LHS: t, Callee: callee, Args: toArgs(args)})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func toArgs(values []ir.Expression) []ir.Arg {
	args := make([]ir.Arg, len(values))
	for i, v := range values {
		args[i] = ir.Arg{Value: v}
	}
	return args
}

func (s *State) importName(nameIdx int) error {
	fromlistExp, err := s.pop(OP_IMPORT_NAME)
	if err != nil {
		return err
	}
	fromlist, ok := constFromlist(fromlistExp)
	if !ok {
		return newErr(s.curLoc, SEVERITY_EXTERNAL, ImportNameFromList{Exp: fromlistExp.String()})
	}

	levelExp, err := s.pop(OP_IMPORT_NAME)
	if err != nil {
		return err
	}
	levelConst, ok := levelExp.(ir.Const)
	level, isInt := int64(0), false
	if ok {
		level, isInt = levelConst.Value.Int()
	}
	if !isInt {
		return newErr(s.curLoc, SEVERITY_EXTERNAL, ImportNameLevel{Exp: levelExp.String()})
	}

	name := s.code.Names[nameIdx]
	var id string
	if level == 0 {
		id = name
	} else {
		cur := s.names.Module()
		for i := int64(0); i < level; i++ {
			popped, _, ok := cur.Pop()
			if !ok {
				return newErr(s.curLoc, SEVERITY_EXTERNAL, ImportNameDepth{Level: int(level)})
			}
			cur = popped
		}
		if name != "" {
			id = cur.String() + "." + name
		} else {
			id = cur.String()
		}
	}

	imp := ir.ImportName{ID: id, Fromlist: fromlist}
	s.emit(ir.ImportNameStmt{Import: imp})
	s.stk.Push(imp)
	return nil
}

// constFromlist interprets IMPORT_NAME's fromlist constant per spec.md
// §4.4: String s => [s], Null => [], Tuple of strings => those strings.
func constFromlist(exp ir.Expression) ([]string, bool) {
	c, ok := exp.(ir.Const)
	if !ok {
		return nil, false
	}
	if c.Value.IsNull() {
		return []string{}, true
	}
	if str, ok := c.Value.Str(); ok {
		return []string{str}, true
	}
	if elems, ok := c.Value.Elems(); ok {
		out := make([]string, len(elems))
		for i, e := range elems {
			str, ok := e.Str()
			if !ok {
				return nil, false
			}
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func (s *State) importFrom(nameIdx int) error {
	top, err := s.peek(OP_IMPORT_FROM)
	if err != nil {
		return err
	}
	imp, ok := top.(ir.ImportName)
	if !ok {
		return newErr(s.curLoc, SEVERITY_EXTERNAL, ImportFrom{Exp: top.String()})
	}
	name := s.code.Names[nameIdx]
	if !containsStr(imp.Fromlist, name) {
		s.logger.Warn("IMPORT_FROM name not in fromlist",
			"name", name, "import", imp.ID, "fromlist", imp.Fromlist, "loc", s.curLoc.String())
	}
	s.stk.Push(ir.ImportFrom{From: imp, Name: name})
	return nil
}

func containsStr(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (s *State) unpackSequence(n int) error {
	if n <= 0 {
		return newErr(s.curLoc, SEVERITY_EXTERNAL, UnpackSequence{N: n})
	}
	tos, err := s.pop(OP_UNPACK_SEQUENCE)
	if err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		s.stk.Push(ir.Subscript{Exp: tos, Index: ir.Const{Value: pyconst.Int(int64(i))}})
	}
	return nil
}

func (s *State) formatValue(flags int) error {
	conv := flags & 0x3
	hasSpec := flags&0x4 != 0

	var specExp ir.Expression = ir.Const{Value: pyconst.Null}
	if hasSpec {
		popped, err := s.pop(OP_FORMAT_VALUE)
		if err != nil {
			return err
		}
		c, ok := popped.(ir.Const)
		if !ok {
			return newErr(s.curLoc, SEVERITY_EXTERNAL, FormatValueSpec{Exp: popped.String()})
		}
		if _, isStr := c.Value.Str(); !isStr {
			return newErr(s.curLoc, SEVERITY_EXTERNAL, FormatValueSpec{Exp: popped.String()})
		}
		specExp = c
	}

	value, err := s.pop(OP_FORMAT_VALUE)
	if err != nil {
		return err
	}

	var fn ir.FormatFn
	switch conv {
	case 1:
		fn = ir.FORMAT_STR
	case 2:
		fn = ir.FORMAT_REPR
	case 3:
		fn = ir.FORMAT_ASCII
	}
	if fn != "" {
		t := s.fresh()
		s.emit(ir.BuiltinCall{LHS: t, Call: ir.FormatFnCaller(fn), Args: []ir.Arg{{Value: value}}})
		value = ir.Temp{Name: t}
	}

	t := s.fresh()
	s.emit(ir.BuiltinCall{LHS: t, Call: ir.Format(), Args: []ir.Arg{{Value: value}, {Value: specExp}}})
	s.stk.Push(ir.Temp{Name: t})
	return nil
}

func (s *State) popJumpIf(idx int, opName string, target int) (ir.Terminator, error) {
	cond, err := s.pop(opName)
	if err != nil {
		return nil, err
	}
	ssaArgs := s.stk.ToSSA()

	nextOffset, ok := s.code.NextOffset(idx)
	if !ok {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, NextOffsetMissing{})
	}

	nextLbl := s.getOrCreateLabel(nextOffset, len(ssaArgs))
	otherLbl := s.getOrCreateLabel(target, len(ssaArgs))

	nextIsTrueFallthrough := opName == OP_POP_JUMP_IF_FALSE
	var condForIf ir.Expression = cond
	if !nextIsTrueFallthrough {
		condForIf = ir.Not{Exp: cond}
	}

	then := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: nextLbl.Name, SSAArgs: ssaArgs}}})
	els := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: otherLbl.Name, SSAArgs: ssaArgs}}})
	return ir.If{Cond: condForIf, Then: then, Else: els}, nil
}

// jumpIfOrPop handles JUMP_IF_TRUE_OR_POP / JUMP_IF_FALSE_OR_POP
// (spec.md §4.4): the condition is peeked, not popped; the "pop" branch
// (fallthrough) strips it from both the SSA parameter list and the SSA
// arguments, while the "jump" branch keeps the full stack shape.
func (s *State) jumpIfOrPop(idx int, opName string, target int) (ir.Terminator, error) {
	full := s.stk.ToSSA() // bottom-first; cond is the last (top) element
	cond := full[len(full)-1]
	rest := full[:len(full)-1]

	nextOffset, ok := s.code.NextOffset(idx)
	if !ok {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, NextOffsetMissing{})
	}

	otherLbl := s.getOrCreateLabel(target, len(full))
	nextLbl := s.getOrCreateLabel(nextOffset, len(rest))

	jumpBranch := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: otherLbl.Name, SSAArgs: full}}})
	popBranch := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: nextLbl.Name, SSAArgs: rest}}})

	if opName == OP_JUMP_IF_TRUE_OR_POP {
		// cond true -> jump (no pop); cond false -> pop, fall through.
		return ir.If{Cond: cond, Then: jumpBranch, Else: popBranch}, nil
	}
	// JUMP_IF_FALSE_OR_POP: cond false -> jump (no pop); cond true -> pop, fall through.
	return ir.If{Cond: cond, Then: popBranch, Else: jumpBranch}, nil
}

// jumpForward handles JUMP_FORWARD: an always-taken jump to
// next_offset+delta (spec.md §4.4 JUMP_FORWARD).
func (s *State) jumpForward(idx int, delta int) (ir.Terminator, error) {
	nextOffset, ok := s.code.NextOffset(idx)
	if !ok {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, NextOffsetMissing{})
	}
	target := nextOffset + delta
	ssaArgs := s.stk.ToSSA()
	lbl := s.getOrCreateLabel(target, len(ssaArgs))
	return ir.Jump{Targets: []ir.NodeCall{{Label: lbl.Name, SSAArgs: ssaArgs}}}, nil
}

// jumpAbsolute handles JUMP_ABSOLUTE. A target before the current
// offset is a back-edge: its label must already exist and its arity must
// match the live stack (spec.md §4.4 JUMP_ABSOLUTE, §7 MissingBackEdge /
// InvalidBackEdge). A forward target behaves like JUMP_FORWARD.
func (s *State) jumpAbsolute(target int) (ir.Terminator, error) {
	ssaArgs := s.stk.ToSSA()

	if target < s.curLoc.Offset {
		lbl, ok := s.reg.LabelAt(target)
		if !ok {
			return nil, newErr(s.curLoc, SEVERITY_EXTERNAL, MissingBackEdge{From: s.curLoc.Offset, To: target})
		}
		if len(lbl.SSAParameters) != len(ssaArgs) {
			return nil, newErr(s.curLoc, SEVERITY_INTERNAL, InvalidBackEdge{
				Name: lbl.Name, Expect: len(lbl.SSAParameters), Actual: len(ssaArgs),
			})
		}
		if !lbl.Backedge {
			panic("translator: back-edge target " + lbl.Name + " was not flagged as a back-edge")
		}
		return ir.Jump{Targets: []ir.NodeCall{{Label: lbl.Name, SSAArgs: ssaArgs}}}, nil
	}

	lbl := s.getOrCreateLabel(target, len(ssaArgs))
	return ir.Jump{Targets: []ir.NodeCall{{Label: lbl.Name, SSAArgs: ssaArgs}}}, nil
}

// forIter handles FOR_ITER (spec.md §4.4 FOR_ITER): it allocates the
// "next" label (loop has an item) with a prelude that re-derives the
// item from the iterator, and the "other" label (loop exhausted) with no
// prelude, resuming with the drained stack unchanged.
func (s *State) forIter(idx int, delta int) (ir.Terminator, error) {
	iterator, err := s.pop(OP_FOR_ITER)
	if err != nil {
		return nil, err
	}

	idTemp := s.fresh()
	s.emit(ir.BuiltinCall{LHS: idTemp, Call: ir.NextIter(), Args: []ir.Arg{{Value: iterator}}})

	condTemp := s.fresh()
	s.emit(ir.BuiltinCall{LHS: condTemp, Call: ir.HasNextIter(), Args: []ir.Arg{{Value: ir.Temp{Name: idTemp}}}})

	ssaArgs := s.stk.ToSSA()

	nextOffset, ok := s.code.NextOffset(idx)
	if !ok {
		return nil, newErr(s.curLoc, SEVERITY_INTERNAL, NextOffsetMissing{})
	}
	otherTarget := nextOffset + delta

	prelude := func(st *State) *State {
		st.stk.Push(iterator)
		dataTemp := st.fresh()
		st.emit(ir.BuiltinCall{LHS: dataTemp, Call: ir.IterData(), Args: []ir.Arg{{Value: ir.Temp{Name: idTemp}}}})
		st.stk.Push(ir.Temp{Name: dataTemp})
		return st
	}

	var nextLbl *cfg.Label[*State]
	if existing, ok := s.reg.LabelAt(nextOffset); ok {
		nextLbl = existing
	} else {
		nextLbl = s.reg.GetLabel(nextOffset, stack.MkSSAParameters(&s.counter, len(ssaArgs)), prelude)
	}
	otherLbl := s.getOrCreateLabel(otherTarget, len(ssaArgs))

	then := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: nextLbl.Name, SSAArgs: ssaArgs}}})
	els := ir.Terminator(ir.Jump{Targets: []ir.NodeCall{{Label: otherLbl.Name, SSAArgs: ssaArgs}}})
	return ir.If{Cond: ir.Temp{Name: condTemp}, Then: then, Else: els}, nil
}
