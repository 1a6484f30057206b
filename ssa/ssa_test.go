package ssa

import "testing"

func TestFreshIsMonotonic(t *testing.T) {
	var c Counter
	n0 := c.Fresh()
	n1 := c.Fresh()
	if n0.Index() != 0 || n1.Index() != 1 {
		t.Errorf("got indices %d, %d, want 0, 1", n0.Index(), n1.Index())
	}
	if n0.Equal(n1) {
		t.Error("distinct Fresh() names compared Equal")
	}
}

func TestFreshNAllocatesInOrder(t *testing.T) {
	var c Counter
	names := c.FreshN(3)
	for i, n := range names {
		if n.Index() != i {
			t.Errorf("names[%d].Index() = %d, want %d", i, n.Index(), i)
		}
	}
}

func TestReset(t *testing.T) {
	var c Counter
	c.FreshN(5)
	c.Reset()
	n := c.Fresh()
	if n.Index() != 0 {
		t.Errorf("after Reset(), first Fresh().Index() = %d, want 0", n.Index())
	}
}

func TestString(t *testing.T) {
	var c Counter
	n := c.Fresh()
	if got, want := n.String(), "n0"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
