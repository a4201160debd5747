package tokenizer

import "github.com/robinvdvleuten/prisma/token"

// node is an entry of the working list. Nodes partition the level text:
// every node covers the rune range [start, end) and nodes are kept in
// text order. A node is either still unconsumed text or a finished
// syntax token.
type node struct {
	prev, next *node
	start, end int
	syntax     bool
	value      token.Node
}

func (n *node) len() int { return n.end - n.start }

// list is a doubly linked list with sentinel head and tail nodes.
type list struct {
	head, tail *node
	length     int
}

func newList(start, end int) *list {
	l := &list{head: &node{}, tail: &node{}}
	l.head.next = l.tail
	l.tail.prev = l.head
	l.addAfter(l.head, &node{start: start, end: end})
	return l
}

// addAfter links n right after at and returns n.
func (l *list) addAfter(at, n *node) *node {
	next := at.next
	n.prev = at
	n.next = next
	at.next = n
	next.prev = n
	l.length++
	return n
}

// removeRange unlinks up to count nodes following at.
func (l *list) removeRange(at *node, count int) {
	next := at.next
	i := 0
	for ; i < count && next != l.tail; i++ {
		next = next.next
	}
	at.next = next
	next.prev = at
	l.length -= i
}
