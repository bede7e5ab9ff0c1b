// Package leveldb provides the goleveldb database backends: "leveldb" on disk
// and "memory" on goleveldb's in-memory storage.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LeJamon/gocmt/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbiter "github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// BackendName is the on-disk backend.
	BackendName = "leveldb"
	// MemoryBackendName keeps everything in memory and ignores the path.
	MemoryBackendName = "memory"
)

func init() {
	database.RegisterBackend(BackendName, func(path string) (database.DB, error) {
		return Open(path)
	})
	database.RegisterBackend(MemoryBackendName, func(string) (database.DB, error) {
		return OpenMemory()
	})
}

// DB implements database.DB on top of goleveldb, on disk or in memory.
type DB struct {
	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens or creates a leveldb database in directory path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{Compression: opt.NoCompression})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb database %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// OpenMemory creates an empty database that lives until Close.
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}
	return &DB{db: db}, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, database.ErrDBClosed
	}

	// goleveldb returns a copy
	val, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}
	return l.db.Put(key, value, &opt.WriteOptions{Sync: true})
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}
	return l.db.Delete(key, &opt.WriteOptions{Sync: true})
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (l *DB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return database.ErrDBClosed
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// Iterator walks a key range of a goleveldb database.
type Iterator struct {
	iter    leveldbiter.Iterator
	current struct {
		key, value []byte
	}
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, database.ErrDBClosed
	}

	return &Iterator{
		iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil),
	}, nil
}

func (it *Iterator) Next() bool {
	if !it.iter.Next() {
		it.current.key, it.current.value = nil, nil
		return false
	}

	// The iterator reuses its buffers.
	key := it.iter.Key()
	it.current.key = make([]byte, len(key))
	copy(it.current.key, key)

	val := it.iter.Value()
	it.current.value = make([]byte, len(val))
	copy(it.current.value, val)
	return true
}

func (it *Iterator) Key() []byte {
	return it.current.key
}

func (it *Iterator) Value() []byte {
	return it.current.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
