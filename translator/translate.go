package translator

import (
	"log/slog"

	"github.com/dr8co/pybc2ssa/pycode"
)

// Config controls one translation run: whether per-statement emission is
// logged, and where that logging goes.
type Config struct {
	Debug  bool
	Logger *slog.Logger
}

// Translate lowers a single top-level code object into an Object: a pure
// function from a code object to a translation result, recursing into
// every code object nested in its constant pool (spec.md §1, §5).
//
// The module identifier is derived from co.Filename, per mk_object
// (spec.md §4.5): a leading "./" and the file extension are stripped and
// the remainder is split on "/".
func Translate(co *pycode.CodeObject, cfg Config) (*Object, error) {
	module := moduleNameFromFilename(co.Filename)
	state := New(co, module, cfg.Debug, cfg.Logger)
	return state.translateObject()
}
