// Package pyconst defines the canonical constant-value domain used by the
// translator's constant pool.
//
// Raw constants decoded by the bytecode frontend are lifted into this
// closed, comparable, hashable representation before the translator ever
// looks at them: integers, floats, booleans, strings, nested tuples,
// embedded code objects, and null. There is a single string form: this
// package has no byte-string variant and performs no byte-string
// coercion (see String).
package pyconst

import (
	"fmt"
	"strconv"
	"strings"
)

//nolint:revive
const (
	INT_KIND   = "INT"
	BOOL_KIND  = "BOOL"
	FLOAT_KIND = "FLOAT"
	STR_KIND   = "STRING"
	TUPLE_KIND = "TUPLE"
	CODE_KIND  = "CODE"
	NULL_KIND  = "NULL"
)

// Kind identifies which variant of Constant a value holds.
type Kind string

// Constant is a single value in the canonical constant domain. The zero
// value is Null.
//
// Constant is not comparable with == and cannot be used as a map key
// directly, because its tuple payload is a slice field; use Key for a
// hashable representation suitable for map keys.
type Constant struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	s     string
	tuple []Constant
	code  *Code
}

// Code is an opaque handle to an embedded code object, as found nested
// inside a Tuple or referenced directly from a constant pool entry. The
// translator never interprets Code; it only carries it through to
// ir.Function and recurses into it during object assembly.
type Code struct {
	Handle any
}

// Int builds an integer Constant.
func Int(v int64) Constant { return Constant{kind: INT_KIND, i: v} }

// Bool builds a boolean Constant.
func Bool(v bool) Constant { return Constant{kind: BOOL_KIND, b: v} }

// Float builds a floating-point Constant.
func Float(v float64) Constant { return Constant{kind: FLOAT_KIND, f: v} }

// String builds a string Constant. Byte-string payloads from the
// frontend must be decoded to a Go string by the caller before calling
// String; this package does not perform that coercion itself since it
// has no notion of source encoding.
func String(v string) Constant { return Constant{kind: STR_KIND, s: v} }

// Tuple builds a tuple Constant from an ordered list of elements.
func Tuple(elems []Constant) Constant {
	return Constant{kind: TUPLE_KIND, tuple: elems}
}

// CodeObj builds a Constant wrapping an embedded code object handle.
func CodeObj(c *Code) Constant { return Constant{kind: CODE_KIND, code: c} }

// Null is the constant representing Python's None.
var Null = Constant{kind: NULL_KIND}

// Kind reports which variant of the sum this Constant holds.
func (c Constant) Kind() Kind { return c.kind }

// Int returns the payload of an Int constant and whether c is one.
func (c Constant) Int() (int64, bool) { return c.i, c.kind == INT_KIND }

// Bool returns the payload of a Bool constant and whether c is one.
func (c Constant) Bool() (bool, bool) { return c.b, c.kind == BOOL_KIND }

// Float returns the payload of a Float constant and whether c is one.
func (c Constant) Float() (float64, bool) { return c.f, c.kind == FLOAT_KIND }

// Str returns the payload of a String constant and whether c is one.
func (c Constant) Str() (string, bool) { return c.s, c.kind == STR_KIND }

// Elems returns the payload of a Tuple constant and whether c is one.
func (c Constant) Elems() ([]Constant, bool) { return c.tuple, c.kind == TUPLE_KIND }

// CodeHandle returns the payload of a Code constant and whether c is one.
func (c Constant) CodeHandle() (*Code, bool) { return c.code, c.kind == CODE_KIND }

// IsNull reports whether c is the Null constant.
func (c Constant) IsNull() bool { return c.kind == NULL_KIND }

// Key returns a comparable, hashable representation of c suitable for use
// as a map key, regardless of kind. Tuples and code handles are folded
// into their string form, which is enough to satisfy the total order
// requirement in spec.md §3 without exposing slice/pointer identity.
func (c Constant) Key() string {
	return c.String()
}

// String renders c in a stable, human-readable form used by both map
// keys (see Key) and debug printing.
func (c Constant) String() string {
	switch c.kind {
	case INT_KIND:
		return strconv.FormatInt(c.i, 10)
	case BOOL_KIND:
		return strconv.FormatBool(c.b)
	case FLOAT_KIND:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case STR_KIND:
		return strconv.Quote(c.s)
	case TUPLE_KIND:
		parts := make([]string, len(c.tuple))
		for i, e := range c.tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case CODE_KIND:
		return fmt.Sprintf("<code %p>", c.code)
	default:
		return "null"
	}
}

// Less imposes the total order required of map keys in spec.md §3: kinds
// order lexically by name, and within a kind, values order naturally.
// Tuple and Code fall back to their String form, which is sufficient for
// a total (if arbitrary) order — it need not match Python's own
// comparison semantics, only be consistent and total.
func (c Constant) Less(other Constant) bool {
	if c.kind != other.kind {
		return c.kind < other.kind
	}
	switch c.kind {
	case INT_KIND:
		return c.i < other.i
	case BOOL_KIND:
		return !c.b && other.b
	case FLOAT_KIND:
		return c.f < other.f
	case STR_KIND:
		return c.s < other.s
	default:
		return c.String() < other.String()
	}
}
