package cmt

import (
	"bytes"
	"fmt"
)

// InvariantError describes a node that breaks the search-tree order, the
// heap order or the commitment invariant.
type InvariantError struct {
	Key         []byte
	Description string
	Err         error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invariant violation at %x: %s: %v", e.Key, e.Description, e.Err)
	}
	return fmt.Sprintf("invariant violation at %x: %s", e.Key, e.Description)
}

// Unwrap returns the underlying error.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Invariants walks the whole tree and returns the first violation found, or
// nil. It checks that:
//   - keys in a left subtree are smaller and keys in a right subtree larger
//   - every node outranks its children
//   - every node's hash matches HashNode over its key and children
//   - priorities match the ones derived from the keys
//   - the cached size matches the node count
func (t *Tree) Invariants() error {
	count, err := t.checkNode(t.root, nil, nil)
	if err != nil {
		return err
	}
	if count != t.size {
		return &InvariantError{
			Description: fmt.Sprintf("size is %d but tree holds %d nodes", t.size, count),
		}
	}
	return nil
}

// checkNode validates n against the exclusive key bounds (lo, hi) and
// returns the number of nodes in the subtree.
func (t *Tree) checkNode(n *node, lo, hi []byte) (int, error) {
	if n == nil {
		return 0, nil
	}

	if lo != nil && bytes.Compare(n.key, lo) <= 0 {
		return 0, &InvariantError{Key: n.key, Description: fmt.Sprintf("key not above lower bound %x", lo)}
	}
	if hi != nil && bytes.Compare(n.key, hi) >= 0 {
		return 0, &InvariantError{Key: n.key, Description: fmt.Sprintf("key not below upper bound %x", hi)}
	}

	if p := DerivePriority(t.hasher, n.key); p.Cmp(n.priority) != 0 {
		return 0, &InvariantError{Key: n.key, Description: fmt.Sprintf("priority %s, derived %s", n.priority, p)}
	}

	for _, child := range []*node{n.left, n.right} {
		if child != nil && !outranks(n, child) {
			return 0, &InvariantError{Key: n.key, Description: fmt.Sprintf("child %x outranks its parent", child.key)}
		}
	}

	if want := HashNode(t.hasher, n.key, hashOf(n.left), hashOf(n.right)); !bytes.Equal(want, n.hash) {
		return 0, &InvariantError{Key: n.key, Description: fmt.Sprintf("hash %x, expected %x", n.hash, want)}
	}

	left, err := t.checkNode(n.left, lo, n.key)
	if err != nil {
		return 0, err
	}
	right, err := t.checkNode(n.right, n.key, hi)
	if err != nil {
		return 0, err
	}
	return 1 + left + right, nil
}
