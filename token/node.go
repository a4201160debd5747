// Package token defines the token tree produced by the tokenizer.
//
// A tree is an ordered sequence of nodes. Each node is either a text leaf
// holding raw source text or a syntax node carrying a token type, an
// optional alias and its own nested sequence of nodes. Concatenating every
// text leaf in depth-first order reproduces the tokenized input exactly.
package token

import "strings"

// Kind tells the two node variants apart.
type Kind uint8

const (
	// KindText is a leaf holding unclassified source text.
	KindText Kind = iota
	// KindSyntax is a typed span with nested content.
	KindSyntax
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSyntax:
		return "syntax"
	default:
		return "unknown"
	}
}

// Node is a single entry of a token tree. The zero value is an empty text
// leaf.
type Node struct {
	kind     Kind
	value    string
	typ      string
	alias    string
	children Tree
}

// Text returns a text leaf.
func Text(value string) Node {
	return Node{kind: KindText, value: value}
}

// Syntax returns a syntax node of the given type.
func Syntax(typ, alias string, children ...Node) Node {
	return Node{kind: KindSyntax, typ: typ, alias: alias, children: children}
}

// Kind returns the node variant.
func (n Node) Kind() Kind { return n.kind }

// IsText reports whether n is a text leaf.
func (n Node) IsText() bool { return n.kind == KindText }

// IsSyntax reports whether n is a syntax node.
func (n Node) IsSyntax() bool { return n.kind == KindSyntax }

// Value returns the text of a leaf, or "" for syntax nodes.
func (n Node) Value() string { return n.value }

// Type returns the token type of a syntax node, or "text" for leaves.
func (n Node) Type() string {
	if n.kind == KindText {
		return "text"
	}
	return n.typ
}

// Alias returns the alias of a syntax node.
func (n Node) Alias() string { return n.alias }

// Children returns the nested content of a syntax node.
// The returned tree must not be modified.
func (n Node) Children() Tree { return n.children }

// Content returns the source text covered by n.
func (n Node) Content() string {
	if n.kind == KindText {
		return n.value
	}
	return n.children.Text()
}

// Tree is an ordered sequence of nodes.
type Tree []Node

// Text concatenates every text leaf in traversal order.
func (t Tree) Text() string {
	var b strings.Builder
	t.Walk(func(n Node, _ int) bool {
		if n.kind == KindText {
			b.WriteString(n.value)
		}
		return true
	})
	return b.String()
}

// Walk visits every node depth-first, left to right. Returning false from
// fn skips the children of the visited node.
func (t Tree) Walk(fn func(n Node, depth int) bool) {
	t.walk(fn, 0)
}

func (t Tree) walk(fn func(Node, int) bool, depth int) {
	for _, n := range t {
		if !fn(n, depth) {
			continue
		}
		if n.kind == KindSyntax {
			n.children.walk(fn, depth+1)
		}
	}
}

// Len returns the total number of nodes in t, nested ones included.
func (t Tree) Len() int {
	count := 0
	t.Walk(func(Node, int) bool {
		count++
		return true
	})
	return count
}
