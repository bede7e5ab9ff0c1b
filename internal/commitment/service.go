// Package commitment keeps a Cartesian Merkle Tree in step with a persisted
// entry store and serves proofs against its current root.
package commitment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/LeJamon/gocmt/internal/core/cmt"
	"github.com/LeJamon/gocmt/internal/storage/treestore"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrRootMismatch is returned when the tree rebuilt from the store does
	// not commit to the root hash persisted with it.
	ErrRootMismatch = errors.New("rebuilt root does not match persisted root")
)

// DefaultProofCacheSize is used when Config.ProofCacheSize is not positive.
const DefaultProofCacheSize = 1024

// Config configures a Service.
type Config struct {
	Store treestore.Config

	// ProofCacheSize is the number of proofs kept per (root, key).
	ProofCacheSize int

	// ProveWorkers bounds the goroutines used by ProveMany. Zero means
	// GOMAXPROCS.
	ProveWorkers int

	Logger *slog.Logger
}

type proofKey struct {
	root string
	key  string
}

// CacheStats reports proof cache effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// Service is a persisted commitment tree.
//
// A write is applied to the tree first, then the changed entry and the new
// root are persisted in one batch. If the batch fails the tree change is
// undone; since the shape depends only on the key set, undoing restores the
// previous root exactly. Readers that do not take the service lock may
// briefly observe the root of a write that is later undone.
type Service struct {
	// mu serializes writers so the store and the tree change in the same
	// order. ProveMany holds it shared to see a single root.
	mu sync.RWMutex

	tree    *cmt.ConcurrentTree
	store   *treestore.Store
	proofs  *lru.Cache[proofKey, *cmt.Proof]
	workers int
	log     *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Open opens the store, replays its entries into a fresh tree and checks the
// result against the persisted root. A store without a root is adopted and
// its root recorded.
func Open(ctx context.Context, cfg Config) (*Service, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("system", "commitment")

	store, err := treestore.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	s, err := newService(ctx, store, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

func newService(ctx context.Context, store *treestore.Store, cfg Config, log *slog.Logger) (*Service, error) {
	size := cfg.ProofCacheSize
	if size <= 0 {
		size = DefaultProofCacheSize
	}
	proofs, err := lru.New[proofKey, *cmt.Proof](size)
	if err != nil {
		return nil, err
	}

	s := &Service{
		tree:    cmt.NewConcurrent(),
		store:   store,
		proofs:  proofs,
		workers: cfg.ProveWorkers,
		log:     log,
	}

	if err := store.Load(ctx, s.tree.Insert); err != nil {
		return nil, fmt.Errorf("failed to rebuild tree: %w", err)
	}
	root := s.tree.RootHash()

	persisted, ok, err := store.Root(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case !ok:
		if err := store.SaveRoot(ctx, root); err != nil {
			return nil, err
		}
	case !bytes.Equal(persisted, root):
		log.Error("root mismatch after rebuild", "persisted", fmt.Sprintf("%x", persisted), "rebuilt", fmt.Sprintf("%x", root))
		return nil, fmt.Errorf("%w: persisted %x, rebuilt %x", ErrRootMismatch, persisted, root)
	}

	log.Info("opened commitment store",
		"backend", cfg.Store.Backend,
		"path", cfg.Store.Path,
		"entries", s.tree.Len(),
		"root", fmt.Sprintf("%x", root),
	)
	return s, nil
}

// Put stores value under key and returns the new root hash.
func (s *Service) Put(ctx context.Context, key, value []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, cmt.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.tree.Get(key)
	if err := s.tree.Insert(key, value); err != nil {
		return nil, err
	}
	root := s.tree.RootHash()

	if err := s.store.Apply(ctx, []treestore.Entry{{Key: key, Value: value}}, nil, root); err != nil {
		if existed {
			_ = s.tree.Insert(key, prev)
		} else {
			s.tree.Remove(key)
		}
		s.log.Warn("put rolled back", "key", fmt.Sprintf("%x", key), "error", err)
		return nil, err
	}
	s.committed(root)
	return root, nil
}

// Delete removes key and returns whether it was present along with the root
// hash after the removal.
func (s *Service) Delete(ctx context.Context, key []byte) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tree.Get(key)
	if !ok {
		return false, s.tree.RootHash(), nil
	}
	s.tree.Remove(key)
	root := s.tree.RootHash()

	if err := s.store.Apply(ctx, nil, [][]byte{key}, root); err != nil {
		_ = s.tree.Insert(key, prev)
		s.log.Warn("delete rolled back", "key", fmt.Sprintf("%x", key), "error", err)
		return false, nil, err
	}
	s.committed(root)
	return true, root, nil
}

// Import inserts entries and persists them together with the resulting root
// in one batch. Either every entry is applied or none is.
func (s *Service) Import(ctx context.Context, entries []treestore.Entry) ([]byte, error) {
	for _, e := range entries {
		if len(e.Key) == 0 {
			return nil, cmt.ErrEmptyKey
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tree.Snapshot()
	for _, e := range entries {
		if err := next.Insert(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	root := next.RootHash()

	if err := s.store.Apply(ctx, entries, nil, root); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := s.tree.Insert(e.Key, e.Value); err != nil {
			return nil, err
		}
	}

	s.log.Info("imported entries", "count", len(entries), "root", fmt.Sprintf("%x", root))
	return root, nil
}

func (s *Service) committed(root []byte) {
	s.log.Debug("committed root", "root", fmt.Sprintf("%x", root), "entries", s.tree.Len())
}

// Get returns the value stored under key.
func (s *Service) Get(key []byte) ([]byte, bool) {
	return s.tree.Get(key)
}

// Root returns the current root hash.
func (s *Service) Root() []byte {
	return s.tree.RootHash()
}

// Len returns the number of entries.
func (s *Service) Len() int {
	return s.tree.Len()
}

// Prove returns a proof for key and the root hash it verifies against.
// Proofs are cached per root; callers must not modify the returned proof.
func (s *Service) Prove(key []byte) (*cmt.Proof, []byte) {
	if p, root, ok := s.cached(s.tree.RootHash(), key); ok {
		return p, root
	}

	p, root := s.tree.ProveWithRoot(key)
	s.proofs.Add(proofKey{root: string(root), key: string(key)}, p)
	return p, root
}

// ProveMany returns proofs for keys, all against the same root, which is
// returned alongside them. Writers are held off until the batch completes.
func (s *Service) ProveMany(ctx context.Context, keys [][]byte) ([]*cmt.Proof, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.tree.RootHash()
	proofs := make([]*cmt.Proof, len(keys))

	var missing [][]byte
	var slots []int
	for i, key := range keys {
		if p, _, ok := s.cached(root, key); ok {
			proofs[i] = p
			continue
		}
		missing = append(missing, key)
		slots = append(slots, i)
	}

	if len(missing) > 0 {
		generated, err := s.tree.GenerateProofs(ctx, missing, s.workers)
		if err != nil {
			return nil, nil, err
		}
		for j, p := range generated {
			proofs[slots[j]] = p
			s.proofs.Add(proofKey{root: string(root), key: string(missing[j])}, p)
		}
	}

	s.log.Debug("generated proofs", "requested", len(keys), "generated", len(missing))
	return proofs, root, nil
}

func (s *Service) cached(root, key []byte) (*cmt.Proof, []byte, bool) {
	p, ok := s.proofs.Get(proofKey{root: string(root), key: string(key)})
	if !ok {
		s.misses.Add(1)
		return nil, nil, false
	}
	s.hits.Add(1)
	return p, root, true
}

// CacheStats returns proof cache hit and miss counts.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// Verify checks p for key against root with the service's hash function.
func (s *Service) Verify(p *cmt.Proof, key, root []byte) bool {
	return cmt.VerifyProofWith(s.tree.Hasher(), p, key, root)
}

// Check validates the tree invariants and that the persisted root matches
// the tree.
func (s *Service) Check(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.tree.Invariants(); err != nil {
		return err
	}

	persisted, _, err := s.store.Root(ctx)
	if err != nil {
		return err
	}
	if root := s.tree.RootHash(); !bytes.Equal(persisted, root) {
		return fmt.Errorf("%w: persisted %x, tree %x", ErrRootMismatch, persisted, root)
	}
	return nil
}

// Close closes the store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.CacheStats()
	s.log.Info("closing commitment store", "entries", s.tree.Len(), "proof_cache_hits", stats.Hits, "proof_cache_misses", stats.Misses)
	return s.store.Close()
}
