package pycode

import (
	"encoding/json"
	"fmt"

	"github.com/dr8co/pybc2ssa/pyconst"
)

// The bytecode frontend itself is out of scope for this module (spec.md
// §1); DecodeJSON instead reads the plain JSON fixture format used by the
// command-line driver and its tests, so a CodeObject can be built without
// a real CPython bytecode reader.

type wireConstant struct {
	Kind  string          `json:"kind"`
	Int   *int64          `json:"int,omitempty"`
	Float *float64        `json:"float,omitempty"`
	Bool  *bool           `json:"bool,omitempty"`
	Str   *string         `json:"str,omitempty"`
	Tuple []wireConstant  `json:"tuple,omitempty"`
	Code  *wireCodeObject `json:"code,omitempty"`
}

type wireInstruction struct {
	OpName       string `json:"op"`
	Arg          int    `json:"arg"`
	Offset       int    `json:"offset"`
	StartsLine   *int   `json:"line,omitempty"`
	IsJumpTarget bool   `json:"jump_target,omitempty"`
}

type wireCodeObject struct {
	Consts   []wireConstant    `json:"consts"`
	Names    []string          `json:"names"`
	VarNames []string          `json:"varnames"`
	CellVars []string          `json:"cellvars"`
	FreeVars []string          `json:"freevars"`
	Name     string            `json:"name"`
	Filename string            `json:"filename"`
	Instrs   []wireInstruction `json:"instrs"`
}

// DecodeJSON parses a JSON-encoded code object fixture into a CodeObject,
// recursively decoding any nested code constants.
func DecodeJSON(data []byte) (*CodeObject, error) {
	var w wireCodeObject
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("pycode: decoding code object: %w", err)
	}
	return w.toCodeObject(), nil
}

func (w *wireCodeObject) toCodeObject() *CodeObject {
	co := &CodeObject{
		Names:    w.Names,
		VarNames: w.VarNames,
		CellVars: w.CellVars,
		FreeVars: w.FreeVars,
		Name:     w.Name,
		Filename: w.Filename,
	}
	co.Consts = make([]pyconst.Constant, len(w.Consts))
	for i, c := range w.Consts {
		co.Consts[i] = c.toConstant()
	}
	co.Instrs = make([]Instruction, len(w.Instrs))
	for i, in := range w.Instrs {
		co.Instrs[i] = Instruction{
			OpName:       in.OpName,
			Arg:          in.Arg,
			Offset:       in.Offset,
			StartsLine:   in.StartsLine,
			IsJumpTarget: in.IsJumpTarget,
		}
	}
	return co
}

func (c wireConstant) toConstant() pyconst.Constant {
	switch c.Kind {
	case "int":
		if c.Int == nil {
			return pyconst.Int(0)
		}
		return pyconst.Int(*c.Int)
	case "bool":
		if c.Bool == nil {
			return pyconst.Bool(false)
		}
		return pyconst.Bool(*c.Bool)
	case "float":
		if c.Float == nil {
			return pyconst.Float(0)
		}
		return pyconst.Float(*c.Float)
	case "str":
		if c.Str == nil {
			return pyconst.String("")
		}
		return pyconst.String(*c.Str)
	case "tuple":
		elems := make([]pyconst.Constant, len(c.Tuple))
		for i, e := range c.Tuple {
			elems[i] = e.toConstant()
		}
		return pyconst.Tuple(elems)
	case "code":
		if c.Code == nil {
			return pyconst.Null
		}
		inner := c.Code.toCodeObject()
		return pyconst.CodeObj(&pyconst.Code{Handle: inner})
	default:
		return pyconst.Null
	}
}
