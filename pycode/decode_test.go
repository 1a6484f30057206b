package pycode

import "testing"

func TestDecodeJSONBasicFields(t *testing.T) {
	data := []byte(`{
		"name": "f",
		"filename": "mod.py",
		"names": ["os"],
		"varnames": ["x", "y"],
		"consts": [
			{"kind": "int", "int": 42},
			{"kind": "str", "str": "hi"},
			{"kind": "bool", "bool": true},
			{"kind": "float", "float": 1.5}
		],
		"instrs": [
			{"op": "LOAD_FAST", "arg": 0, "offset": 0, "line": 1},
			{"op": "RETURN_VALUE", "arg": 0, "offset": 2, "jump_target": true}
		]
	}`)

	co, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	if co.Name != "f" || co.Filename != "mod.py" {
		t.Errorf("Name/Filename = %q/%q, want f/mod.py", co.Name, co.Filename)
	}
	if len(co.Names) != 1 || co.Names[0] != "os" {
		t.Errorf("Names = %v, want [os]", co.Names)
	}
	if len(co.VarNames) != 2 {
		t.Fatalf("VarNames = %v, want 2 entries", co.VarNames)
	}

	if len(co.Consts) != 4 {
		t.Fatalf("Consts len = %d, want 4", len(co.Consts))
	}
	if v, ok := co.Consts[0].Int(); !ok || v != 42 {
		t.Errorf("Consts[0] = (%d, %v), want (42, true)", v, ok)
	}
	if v, ok := co.Consts[1].Str(); !ok || v != "hi" {
		t.Errorf("Consts[1] = (%q, %v), want (hi, true)", v, ok)
	}
	if v, ok := co.Consts[2].Bool(); !ok || !v {
		t.Errorf("Consts[2] = (%v, %v), want (true, true)", v, ok)
	}
	if v, ok := co.Consts[3].Float(); !ok || v != 1.5 {
		t.Errorf("Consts[3] = (%v, %v), want (1.5, true)", v, ok)
	}

	if len(co.Instrs) != 2 {
		t.Fatalf("Instrs len = %d, want 2", len(co.Instrs))
	}
	if co.Instrs[0].OpName != "LOAD_FAST" || co.Instrs[0].StartsLine == nil || *co.Instrs[0].StartsLine != 1 {
		t.Errorf("Instrs[0] = %+v, want LOAD_FAST at line 1", co.Instrs[0])
	}
	if !co.Instrs[1].IsJumpTarget {
		t.Error("Instrs[1].IsJumpTarget = false, want true")
	}
}

func TestDecodeJSONNestedTuple(t *testing.T) {
	data := []byte(`{
		"name": "m", "filename": "m.py",
		"consts": [
			{"kind": "tuple", "tuple": [
				{"kind": "int", "int": 1},
				{"kind": "int", "int": 2}
			]}
		]
	}`)
	co, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	elems, ok := co.Consts[0].Elems()
	if !ok || len(elems) != 2 {
		t.Fatalf("Consts[0].Elems() = (%v, %v), want 2 elements", elems, ok)
	}
	v0, _ := elems[0].Int()
	v1, _ := elems[1].Int()
	if v0 != 1 || v1 != 2 {
		t.Errorf("tuple elements = %d, %d, want 1, 2", v0, v1)
	}
}

func TestDecodeJSONNestedCodeObject(t *testing.T) {
	data := []byte(`{
		"name": "outer", "filename": "m.py",
		"consts": [
			{"kind": "code", "code": {
				"name": "inner",
				"filename": "m.py",
				"instrs": [{"op": "LOAD_CONST", "arg": 0, "offset": 0}]
			}}
		]
	}`)
	co, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	handle, ok := co.Consts[0].CodeHandle()
	if !ok {
		t.Fatal("Consts[0].CodeHandle() ok = false, want true")
	}
	inner, ok := handle.Handle.(*CodeObject)
	if !ok {
		t.Fatalf("Handle is %T, want *CodeObject", handle.Handle)
	}
	if inner.Name != "inner" || len(inner.Instrs) != 1 {
		t.Errorf("inner = %+v, want Name=inner with 1 instruction", inner)
	}
}

func TestDecodeJSONUnknownConstKindIsNull(t *testing.T) {
	data := []byte(`{"name": "m", "filename": "m.py", "consts": [{"kind": "bytes"}]}`)
	co, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if !co.Consts[0].IsNull() {
		t.Errorf("unknown kind constant = %v, want Null", co.Consts[0])
	}
}

func TestDecodeJSONInvalidReturnsError(t *testing.T) {
	_, err := DecodeJSON([]byte(`not json`))
	if err == nil {
		t.Error("DecodeJSON() on invalid JSON error = nil, want non-nil")
	}
}

func TestNextOffset(t *testing.T) {
	co := &CodeObject{Instrs: []Instruction{{Offset: 0}, {Offset: 2}}}
	next, ok := co.NextOffset(0)
	if !ok || next != 2 {
		t.Errorf("NextOffset(0) = (%d, %v), want (2, true)", next, ok)
	}
	if _, ok := co.NextOffset(1); ok {
		t.Error("NextOffset() at last instruction ok = true, want false")
	}
}
