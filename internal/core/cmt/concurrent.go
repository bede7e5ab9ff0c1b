package cmt

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ConcurrentTree is a Tree behind a reader/writer lock. Writers hold the
// exclusive lock for the whole descent and rebuild, so readers only ever see
// a fully rehashed tree.
type ConcurrentTree struct {
	mu   sync.RWMutex
	tree *Tree
}

// NewConcurrent creates an empty concurrent tree.
func NewConcurrent(opts ...Option) *ConcurrentTree {
	return &ConcurrentTree{tree: New(opts...)}
}

// Hasher returns the hash primitive the tree commits with.
func (c *ConcurrentTree) Hasher() Hasher {
	return c.tree.hasher
}

// Insert adds or updates key.
func (c *ConcurrentTree) Insert(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tree.Insert(key, value)
}

// Remove deletes key and reports whether it was present.
func (c *ConcurrentTree) Remove(key []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tree.Remove(key)
}

// ContainsKey reports whether key is present.
func (c *ConcurrentTree) ContainsKey(key []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.ContainsKey(key)
}

// Get returns the value stored under key.
func (c *ConcurrentTree) Get(key []byte) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.Get(key)
}

// RootHash returns the current root commitment.
func (c *ConcurrentTree) RootHash() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.RootHash()
}

// Len returns the number of keys.
func (c *ConcurrentTree) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.Len()
}

// GenerateProof builds a proof for key.
func (c *ConcurrentTree) GenerateProof(key []byte) *Proof {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.GenerateProof(key)
}

// ProveWithRoot builds a proof for key together with the root hash it was
// generated against, both read under the same lock.
func (c *ConcurrentTree) ProveWithRoot(key []byte) (*Proof, []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.GenerateProof(key), c.tree.RootHash()
}

// GenerateProofs builds proofs for keys using up to workers goroutines.
// Each proof is generated under its own read lock, so a batch may straddle
// concurrent writes; callers that need a single root should use Snapshot.
// A workers value below one means GOMAXPROCS.
func (c *ConcurrentTree) GenerateProofs(ctx context.Context, keys [][]byte, workers int) ([]*Proof, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	proofs := make([]*Proof, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, key := range keys {
		if err := gctx.Err(); err != nil {
			break
		}
		i, key := i, key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			proofs[i] = c.GenerateProof(key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return proofs, nil
}

// ForEach calls fn for every entry in ascending key order while holding the
// read lock. fn must not call back into c.
func (c *ConcurrentTree) ForEach(fn func(key, value []byte) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.tree.ForEach(fn)
}

// Invariants checks the tree under the read lock.
func (c *ConcurrentTree) Invariants() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.Invariants()
}

// Snapshot returns a detached single-threaded copy of the current tree.
func (c *ConcurrentTree) Snapshot() *Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tree.Clone()
}
