package translator

import "fmt"

// Loc identifies a point in the bytecode stream: the instruction offset
// and, when the frontend supplied one, the source line it starts.
type Loc struct {
	Offset int
	Line   *int // nil when the instruction carries no starts_line
}

// String renders Loc for error messages and debug printing.
func (l Loc) String() string {
	if l.Line != nil {
		return fmt.Sprintf("offset %d (line %d)", l.Offset, *l.Line)
	}
	return fmt.Sprintf("offset %d", l.Offset)
}
