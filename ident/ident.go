// Package ident represents qualified names resolved by the translator:
// the root of a dotted path together with its trailing attribute path and
// the kind of entity the path was resolved against (a builtin, an
// imported name, or an ordinary name). See spec.md §3 Identifier.
package ident

import "strings"

//nolint:revive
const (
	BUILTIN_KIND  = "BUILTIN"
	IMPORTED_KIND = "IMPORTED"
	NORMAL_KIND   = "NORMAL"
)

// Kind classifies the entity an Identifier's root was resolved against.
type Kind string

// Identifier is (root, path, kind): a dotted name root.path[0].path[1]...
// with path stored in reverse (innermost attribute first); Extend and
// Pop copy the path rather than sharing it. An Identifier
// is never empty: root is always non-empty, enforced by the constructors
// in this package.
type Identifier struct {
	root string
	path []string
	kind Kind
}

// New builds an Identifier with the given root and kind and an empty
// attribute path.
func New(root string, kind Kind) Identifier {
	if root == "" {
		panic("ident: empty root")
	}
	return Identifier{root: root, kind: kind}
}

// Root returns the identifier's root name.
func (id Identifier) Root() string { return id.root }

// Kind returns the identifier's resolution kind.
func (id Identifier) Kind() Kind { return id.kind }

// Extend returns a copy of id with name appended as the new innermost
// attribute, e.g. Extend("b") on root.a yields root.a.b.
func (id Identifier) Extend(name string) Identifier {
	path := make([]string, 0, len(id.path)+1)
	path = append(path, name)
	path = append(path, id.path...)
	return Identifier{root: id.root, path: path, kind: id.kind}
}

// Pop returns a copy of id with its innermost attribute removed, along
// with the popped attribute name and whether there was one to pop. If
// id's path is already empty, Pop returns id unchanged and ok=false.
func (id Identifier) Pop() (popped Identifier, name string, ok bool) {
	if len(id.path) == 0 {
		return id, "", false
	}
	name = id.path[0]
	rest := make([]string, len(id.path)-1)
	copy(rest, id.path[1:])
	return Identifier{root: id.root, path: rest, kind: id.kind}, name, true
}

// RootIdentifier returns an Identifier containing only id's root,
// discarding any attribute path.
func (id Identifier) RootIdentifier() Identifier {
	return Identifier{root: id.root, kind: id.kind}
}

// Split appends each of the dot-separated components of dotted, in order,
// as successive attributes onto id. Used by MAKE_FUNCTION (spec.md §4.4)
// to turn a raw "outer.Inner.method" qualname into attribute extensions
// on the enclosing module identifier.
func (id Identifier) Split(dotted string) Identifier {
	cur := id
	for _, part := range strings.Split(dotted, ".") {
		if part == "" {
			continue
		}
		cur = cur.Extend(part)
	}
	return cur
}

// String reconstructs the dotted form root.a.b.c by reversing path.
func (id Identifier) String() string {
	if len(id.path) == 0 {
		return id.root
	}
	parts := make([]string, len(id.path))
	for i, p := range id.path {
		parts[len(id.path)-1-i] = p
	}
	return id.root + "." + strings.Join(parts, ".")
}
