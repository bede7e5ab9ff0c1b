// Package treestore persists the entries of a commitment tree and the root
// hash last committed over them.
//
// Only entries are stored, never nodes: the tree shape is a function of the
// key set, so replaying the entries rebuilds the same tree and the same root.
package treestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/gocmt/internal/storage/compression"
	"github.com/LeJamon/gocmt/internal/storage/database"

	// Register the database backends with database.Open.
	_ "github.com/LeJamon/gocmt/internal/storage/database/bbolt"
	_ "github.com/LeJamon/gocmt/internal/storage/database/leveldb"
	_ "github.com/LeJamon/gocmt/internal/storage/database/pebble"
)

var (
	entryPrefix = []byte("e/")
	rootKey     = []byte("m/root")
)

// rootVersion prefixes the stored root so the empty root is not stored as an
// empty value.
const rootVersion byte = 1

// Entry is one persisted key/value pair.
type Entry struct {
	Key   []byte
	Value []byte
}

// Config selects the backend and value compression of a Store.
type Config struct {
	Backend    string
	Path       string
	Compressor string
}

// Store is the persisted entry set.
type Store struct {
	db         database.DB
	compressor compression.Compressor
}

// Open opens the configured backend.
func Open(cfg Config) (*Store, error) {
	comp, err := compression.Get(cfg.Compressor)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Backend, cfg.Path)
	if err != nil {
		return nil, err
	}
	return New(db, comp), nil
}

// New wraps an already open database.
func New(db database.DB, comp compression.Compressor) *Store {
	return &Store{db: db, compressor: comp}
}

func entryKey(key []byte) []byte {
	k := make([]byte, 0, len(entryPrefix)+len(key))
	k = append(k, entryPrefix...)
	return append(k, key...)
}

// Apply stores puts, removes deletes and records root in one atomic batch.
// Deleting an absent key is not an error.
func (s *Store) Apply(ctx context.Context, puts []Entry, deletes [][]byte, root []byte) error {
	ops := make([]database.BatchOperation, 0, len(puts)+len(deletes)+1)
	for _, e := range puts {
		enc, err := s.compressor.Compress(e.Value)
		if err != nil {
			return fmt.Errorf("failed to compress value for %x: %w", e.Key, err)
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: entryKey(e.Key), Value: enc})
	}
	for _, key := range deletes {
		ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: entryKey(key)})
	}
	ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: rootKey, Value: encodeRoot(root)})

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("failed to commit %d puts and %d deletes: %w", len(puts), len(deletes), err)
	}
	return nil
}

// Load calls fn for every stored entry in key order.
func (s *Store) Load(ctx context.Context, fn func(key, value []byte) error) error {
	return database.ForEachPrefix(ctx, s.db, entryPrefix, func(k, v []byte) error {
		value, err := s.compressor.Decompress(v)
		if err != nil {
			return fmt.Errorf("failed to decode entry %x: %w", k[len(entryPrefix):], err)
		}
		return fn(k[len(entryPrefix):], value)
	})
}

// SaveRoot records root as the last committed root hash.
func (s *Store) SaveRoot(ctx context.Context, root []byte) error {
	if err := s.db.Write(ctx, rootKey, encodeRoot(root)); err != nil {
		return fmt.Errorf("failed to store root: %w", err)
	}
	return nil
}

// Root returns the last committed root hash. ok is false when no root was
// ever saved.
func (s *Store) Root(ctx context.Context) (root []byte, ok bool, err error) {
	v, err := s.db.Read(ctx, rootKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read root: %w", err)
	}
	if len(v) == 0 || v[0] != rootVersion {
		return nil, false, fmt.Errorf("unsupported root record %x", v)
	}
	if len(v) == 1 {
		return nil, true, nil
	}
	return v[1:], true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeRoot(root []byte) []byte {
	v := make([]byte, 0, 1+len(root))
	v = append(v, rootVersion)
	return append(v, root...)
}
