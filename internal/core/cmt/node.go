package cmt

import (
	"bytes"
	"fmt"
)

// node is a single treap entry. A node exclusively owns its children.
type node struct {
	key      []byte
	value    []byte
	priority Priority
	hash     []byte
	left     *node
	right    *node
}

// hashOf returns the commitment of n, or the empty placeholder for nil.
func hashOf(n *node) []byte {
	if n == nil {
		return nil
	}
	return n.hash
}

// outranks reports whether a belongs above b in the heap. Equal priorities
// are broken by the smaller key so the shape depends only on the key set.
func outranks(a, b *node) bool {
	if c := a.priority.Cmp(b.priority); c != 0 {
		return c > 0
	}
	return bytes.Compare(a.key, b.key) < 0
}

// updateHash recomputes n.hash from its key and current children.
func (t *Tree) updateHash(n *node) {
	n.hash = HashNode(t.hasher, n.key, hashOf(n.left), hashOf(n.right))
}

func (t *Tree) newLeaf(key, value []byte, priority Priority) *node {
	n := &node{
		key:      key,
		value:    value,
		priority: priority,
	}
	t.updateHash(n)
	return n
}

// rotateLeft lifts x.right above x:
//
//	  x              y
//	 / \            / \
//	a   y    ->    x   c
//	   / \        / \
//	  b   c      a   b
//
// x is rehashed before y.
func (t *Tree) rotateLeft(x *node) *node {
	y := x.right
	if y == nil {
		panic(fmt.Sprintf("cmt: rotateLeft on %x without right child", x.key))
	}

	x.right = y.left
	t.updateHash(x)

	y.left = x
	t.updateHash(y)

	return y
}

// rotateRight lifts y.left above y. Mirror image of rotateLeft.
func (t *Tree) rotateRight(y *node) *node {
	x := y.left
	if x == nil {
		panic(fmt.Sprintf("cmt: rotateRight on %x without left child", y.key))
	}

	y.left = x.right
	t.updateHash(y)

	x.right = y
	t.updateHash(x)

	return x
}

// clone deep-copies the subtree rooted at n.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	return &node{
		key:      n.key,
		value:    n.value,
		priority: n.priority,
		hash:     n.hash,
		left:     n.left.clone(),
		right:    n.right.clone(),
	}
}
