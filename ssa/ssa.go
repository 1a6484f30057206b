// Package ssa provides the SSA temporary-name model used throughout the
// translator: a monotonically increasing counter scoped to one object
// (reset whenever a nested code object starts translation), and the
// Name type rendered as n<k>. See spec.md §3 "SSA name".
package ssa

import "strconv"

// Name is a single SSA temporary, identified by its allocation index.
type Name struct {
	n int
}

// String renders a Name in the canonical n<k> form.
func (nm Name) String() string { return "n" + strconv.Itoa(nm.n) }

// Index returns the raw allocation index of nm.
func (nm Name) Index() int { return nm.n }

// Equal reports whether nm and other were allocated from the same
// counter at the same index.
func (nm Name) Equal(other Name) bool { return nm.n == other.n }

// Counter allocates fresh, strictly increasing Names. The zero value is
// ready to use and starts at n0.
type Counter struct {
	next int
}

// Fresh allocates and returns the next Name.
func (c *Counter) Fresh() Name {
	nm := Name{n: c.next}
	c.next++
	return nm
}

// FreshN allocates k fresh Names in allocation order.
func (c *Counter) FreshN(k int) []Name {
	names := make([]Name, k)
	for i := range names {
		names[i] = c.Fresh()
	}
	return names
}

// Reset rewinds the counter to n0. The translator does not call it: each
// nested code object gets a new State whose zero-value Counter starts at
// n0.
func (c *Counter) Reset() { c.next = 0 }
