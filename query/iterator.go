// Package query implements the edit and display queries (§4.G): locating
// the node(s) under a click, and the page rectangles for a source
// location, plus the Iterator both return results through.
package query

import "github.com/viant/synctex/node"

// Iterator walks a query result tree depth-first (child, then sibling,
// then ancestor's sibling), matching iterator_next upstream. The tree it
// walks is built of Handle nodes (§3.1) so walking it never perturbs the
// parsed/proxy tree the handles point into.
type Iterator struct {
	root   *node.Node
	cursor *node.Node
	count  int
}

// NewIterator wraps a handle tree of count total nodes (root plus its full
// descendant chain).
func NewIterator(root *node.Node, count int) *Iterator {
	return &Iterator{root: root, cursor: root, count: count}
}

// HasNext reports whether a call to Next would return a node.
func (it *Iterator) HasNext() bool { return it.cursor != nil }

// Next returns the current node and advances the cursor.
func (it *Iterator) Next() *node.Node {
	cur := it.cursor
	if cur == nil {
		return nil
	}
	it.advance()
	return cur
}

func (it *Iterator) advance() {
	if c := it.cursor.Child(); c != nil {
		it.cursor = c
		return
	}
	n := it.cursor
	for n != nil {
		if s := n.Sibling(); s != nil {
			it.cursor = s
			return
		}
		n = n.Parent()
	}
	it.cursor = nil
}

// Count returns the total number of handles in the result tree.
func (it *Iterator) Count() int { return it.count }

// Reset reseats the cursor at the tree root.
func (it *Iterator) Reset() { it.cursor = it.root }

// Free releases the iterator's reference to its result tree. It does not
// touch the primary/proxy nodes the handles target.
func (it *Iterator) Free() {
	it.root = nil
	it.cursor = nil
}

// newHandle allocates a Handle targeting n.
func newHandle(n *node.Node) *node.Node {
	h := node.New(node.KindHandle)
	h.SetTarget(n)
	return h
}

// chainSiblings links handles as a sibling chain with a shared (absent)
// parent, returning the head.
func chainSiblings(handles ...*node.Node) *node.Node {
	var head, tail *node.Node
	for _, h := range handles {
		if h == nil {
			continue
		}
		if head == nil {
			head = h
		} else {
			node.InsertAfter(tail, h)
		}
		tail = h
	}
	return head
}
