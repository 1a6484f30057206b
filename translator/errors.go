package translator

import "fmt"

// Severity classifies an Error as either an external fault (malformed
// input the frontend should not have produced) or an internal one (a
// translator bug — a contract this package itself is supposed to
// uphold), per spec.md §7.
type Severity string

//nolint:revive
const (
	SEVERITY_EXTERNAL Severity = "external"
	SEVERITY_INTERNAL Severity = "internal"
)

// Kind is the sum of error kinds spec.md §7 enumerates. Each concrete
// kind type below implements Kind and carries the payload its table row
// names.
type Kind interface {
	// Marker method to identify translator error kinds.
	kindNode()
	// message renders the kind-specific error text.
	message() string
}

// Error is the (severity, location, kind) triple spec.md §7 mandates for
// every translator failure.
type Error struct {
	Severity Severity
	Loc      Loc
	Kind     Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at %s: %s", e.Severity, e.Loc, e.Kind.message())
}

func newErr(loc Loc, sev Severity, kind Kind) *Error {
	return &Error{Severity: sev, Loc: loc, Kind: kind}
}

// EmptyStack — internal: pop/peek with an empty stack.
type EmptyStack struct{ Op string }

func (EmptyStack) kindNode() {}
func (k EmptyStack) message() string {
	return fmt.Sprintf("%s: empty stack", k.Op)
}

// UnsupportedOpcode — internal: no handler for this opcode.
type UnsupportedOpcode struct{ Name string }

func (UnsupportedOpcode) kindNode() {}
func (k UnsupportedOpcode) message() string {
	return fmt.Sprintf("unsupported opcode %s", k.Name)
}

// MakeFunction — internal: wrong shape for a MAKE_FUNCTION operand.
type MakeFunction struct{ What, Got string }

func (MakeFunction) kindNode() {}
func (k MakeFunction) message() string {
	return fmt.Sprintf("MAKE_FUNCTION expected %s, got %s", k.What, k.Got)
}

// BuildConstKeyMapLength — internal: key-count mismatch.
type BuildConstKeyMapLength struct{ M, N int }

func (BuildConstKeyMapLength) kindNode() {}
func (k BuildConstKeyMapLength) message() string {
	return fmt.Sprintf("BUILD_CONST_KEY_MAP: %d keys, expected %d", k.M, k.N)
}

// BuildConstKeyMapKeys — internal: keys not a constant tuple.
type BuildConstKeyMapKeys struct{ Exp string }

func (BuildConstKeyMapKeys) kindNode() {}
func (k BuildConstKeyMapKeys) message() string {
	return fmt.Sprintf("BUILD_CONST_KEY_MAP: keys not a constant tuple, got %s", k.Exp)
}

// LoadBuildClass — external: class construction malformed (too few args).
type LoadBuildClass struct{ Args int }

func (LoadBuildClass) kindNode() {}
func (k LoadBuildClass) message() string {
	return fmt.Sprintf("LOAD_BUILD_CLASS: need at least 2 args, got %d", k.Args)
}

// LoadBuildClassName — external: class-name argument not a string literal.
type LoadBuildClassName struct{ Exp string }

func (LoadBuildClassName) kindNode() {}
func (k LoadBuildClassName) message() string {
	return fmt.Sprintf("LOAD_BUILD_CLASS: class name not a string literal, got %s", k.Exp)
}

// ImportNameFromList — external: fromlist operand malformed.
type ImportNameFromList struct{ Exp string }

func (ImportNameFromList) kindNode() {}
func (k ImportNameFromList) message() string {
	return fmt.Sprintf("IMPORT_NAME: malformed fromlist %s", k.Exp)
}

// ImportNameLevel — external: level operand not a constant int.
type ImportNameLevel struct{ Exp string }

func (ImportNameLevel) kindNode() {}
func (k ImportNameLevel) message() string {
	return fmt.Sprintf("IMPORT_NAME: level not a constant int, got %s", k.Exp)
}

// ImportNameDepth — external: relative import walked past the module path.
type ImportNameDepth struct{ Level int }

func (ImportNameDepth) kindNode() {}
func (k ImportNameDepth) message() string {
	return fmt.Sprintf("IMPORT_NAME: level %d walks past the module path", k.Level)
}

// ImportFrom — external: IMPORT_FROM's stack top is not an ImportName.
type ImportFrom struct{ Exp string }

func (ImportFrom) kindNode() {}
func (k ImportFrom) message() string {
	return fmt.Sprintf("IMPORT_FROM: top of stack is not an import, got %s", k.Exp)
}

// CompareOp — external: comparator index out of range.
type CompareOp struct{ N int }

func (CompareOp) kindNode() {}
func (k CompareOp) message() string {
	return fmt.Sprintf("COMPARE_OP: index %d out of range", k.N)
}

// UnpackSequence — external: non-positive unpack count.
type UnpackSequence struct{ N int }

func (UnpackSequence) kindNode() {}
func (k UnpackSequence) message() string {
	return fmt.Sprintf("UNPACK_SEQUENCE: non-positive count %d", k.N)
}

// FormatValueSpec — external: format spec not a string literal.
type FormatValueSpec struct{ Exp string }

func (FormatValueSpec) kindNode() {}
func (k FormatValueSpec) message() string {
	return fmt.Sprintf("FORMAT_VALUE: spec not a string literal, got %s", k.Exp)
}

// NextOffsetMissing — internal: a jump needed the following offset and
// none existed.
type NextOffsetMissing struct{}

func (NextOffsetMissing) kindNode() {}
func (NextOffsetMissing) message() string { return "no instruction follows this one" }

// MissingBackEdge — external: back-jump to an unregistered offset.
type MissingBackEdge struct{ From, To int }

func (MissingBackEdge) kindNode() {}
func (k MissingBackEdge) message() string {
	return fmt.Sprintf("back-jump from offset %d to unregistered offset %d", k.From, k.To)
}

// InvalidBackEdge — internal: arity mismatch on a back-edge.
type InvalidBackEdge struct {
	Name           string
	Expect, Actual int
}

func (InvalidBackEdge) kindNode() {}
func (k InvalidBackEdge) message() string {
	return fmt.Sprintf("back-edge to %s expects arity %d, got %d", k.Name, k.Expect, k.Actual)
}
