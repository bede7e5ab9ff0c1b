package cmt

import (
	"bytes"
	"errors"
)

var (
	// ErrEmptyKey is returned when inserting a zero-length key.
	ErrEmptyKey = errors.New("cmt: key must not be empty")
)

// Tree is a Cartesian Merkle Tree: a treap ordered by key and heap-ordered by
// a priority derived from the key, with a Merkle commitment at every node.
//
// A Tree is not safe for concurrent use; see ConcurrentTree.
type Tree struct {
	root   *node
	hasher Hasher
	size   int
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{hasher: DefaultHasher}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Hasher returns the hash primitive the tree commits with.
func (t *Tree) Hasher() Hasher {
	return t.hasher
}

// RootHash returns the commitment of the whole tree. The empty tree commits
// to the empty byte slice.
func (t *Tree) RootHash() []byte {
	return bytes.Clone(hashOf(t.root))
}

// Len returns the number of keys in the tree.
func (t *Tree) Len() int {
	return t.size
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	return height(t.root)
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.left), height(n.right))
}

// Insert adds key with value, or replaces the value of an existing key.
func (t *Tree) Insert(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	key = bytes.Clone(key)
	value = bytes.Clone(value)
	t.root = t.insert(t.root, key, value, DerivePriority(t.hasher, key))
	return nil
}

func (t *Tree) insert(n *node, key, value []byte, priority Priority) *node {
	if n == nil {
		t.size++
		return t.newLeaf(key, value, priority)
	}

	c := bytes.Compare(key, n.key)
	if c == 0 {
		// The commitment covers keys only, so the hash is unchanged.
		n.value = value
		return n
	}

	fresh := &node{key: key, value: value, priority: priority}
	if outranks(fresh, n) {
		fresh.left, fresh.right = t.split(n, key)
		t.updateHash(fresh)
		t.size++
		return fresh
	}

	if c < 0 {
		n.left = t.insert(n.left, key, value, priority)
	} else {
		n.right = t.insert(n.right, key, value, priority)
	}
	t.updateHash(n)
	return n
}

// split partitions the subtree rooted at n into the keys below pivot and the
// keys above it. Nodes are reattached, never copied, and only nodes on the
// search path for pivot are rehashed.
func (t *Tree) split(n *node, pivot []byte) (less, greater *node) {
	if n == nil {
		return nil, nil
	}

	if bytes.Compare(n.key, pivot) < 0 {
		l, g := t.split(n.right, pivot)
		n.right = l
		t.updateHash(n)
		return n, g
	}

	l, g := t.split(n.left, pivot)
	n.left = g
	t.updateHash(n)
	return l, n
}

// Remove deletes key from the tree and reports whether it was present.
// Removing an absent key is a no-op.
func (t *Tree) Remove(key []byte) bool {
	root, removed := t.remove(t.root, key)
	t.root = root
	if removed {
		t.size--
	}
	return removed
}

func (t *Tree) remove(n *node, key []byte) (*node, bool) {
	if n == nil {
		return nil, false
	}

	var removed bool
	switch c := bytes.Compare(key, n.key); {
	case c < 0:
		n.left, removed = t.remove(n.left, key)
	case c > 0:
		n.right, removed = t.remove(n.right, key)
	default:
		n.priority = MinPriority
		return t.sink(n), true
	}

	if removed {
		t.updateHash(n)
	}
	return n, removed
}

// sink rotates n toward the leaves, always lifting its higher-ranked child,
// and drops it once it has no children. Every subtree root created on the
// way down is rehashed after its new child settles.
func (t *Tree) sink(n *node) *node {
	switch {
	case n.left == nil && n.right == nil:
		return nil
	case n.right == nil || (n.left != nil && outranks(n.left, n.right)):
		top := t.rotateRight(n)
		top.right = t.sink(top.right)
		t.updateHash(top)
		return top
	default:
		top := t.rotateLeft(n)
		top.left = t.sink(top.left)
		t.updateHash(top)
		return top
	}
}

func (t *Tree) find(key []byte) *node {
	n := t.root
	for n != nil {
		switch c := bytes.Compare(key, n.key); {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// ContainsKey reports whether key is present.
func (t *Tree) ContainsKey(key []byte) bool {
	return t.find(key) != nil
}

// Get returns the value stored under key.
func (t *Tree) Get(key []byte) ([]byte, bool) {
	n := t.find(key)
	if n == nil {
		return nil, false
	}
	return bytes.Clone(n.value), true
}

// ForEach calls fn for every entry in ascending key order until fn returns
// false. fn must not modify the tree.
func (t *Tree) ForEach(fn func(key, value []byte) bool) {
	forEach(t.root, fn)
}

func forEach(n *node, fn func(key, value []byte) bool) bool {
	if n == nil {
		return true
	}
	return forEach(n.left, fn) && fn(n.key, n.value) && forEach(n.right, fn)
}

// Clone returns a deep copy of the tree sharing no nodes with t.
func (t *Tree) Clone() *Tree {
	return &Tree{
		root:   t.root.clone(),
		hasher: t.hasher,
		size:   t.size,
	}
}
